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

import "fmt"

// MalformedRecordError reports a record that could not be normalized. The
// record contributes no call; extraction of the rest of the sample continues.
type MalformedRecordError struct {
	Chrom string
	Pos   int
	Role  Role
	Err   error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record at %s:%d: %v", e.Role, e.Chrom, e.Pos, e.Err)
}

// Unwrap returns the underlying cause.
func (e *MalformedRecordError) Unwrap() error { return e.Err }
