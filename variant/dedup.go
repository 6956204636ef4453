// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package variant

// Dedup returns t with every row whose key duplicates an earlier row's key
// removed. Row order is preserved and the first occurrence is kept. Indexes
// are not reassigned.
func Dedup(t Table, key KeyFunc) Table {
	seen := make(map[Key]struct{}, len(t))
	out := make(Table, 0, len(t))
	for i := range t {
		k := key(&t[i])
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t[i])
	}
	return out
}

// Subtract returns the rows of t whose key does not occur in ref. Every
// matching row is dropped, not only repeats beyond the first.
func Subtract(t, ref Table, key KeyFunc) Table {
	if len(ref) == 0 {
		return append(Table(nil), t...)
	}
	drop := KeySet(ref, key)
	return t.Filter(func(c *Call) bool {
		_, ok := drop[key(c)]
		return !ok
	})
}

// KeySet returns the set of keys present in t.
func KeySet(t Table, key KeyFunc) map[Key]struct{} {
	s := make(map[Key]struct{}, len(t))
	for i := range t {
		s[key(&t[i])] = struct{}{}
	}
	return s
}
