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
package cmd

import (
	"os"
	"strings"

	"github.com/grailbio/base/log"
	"v.io/x/lib/cmdline"
)

func newRoot(cfg *config) *cmdline.Command {
	return &cmdline.Command{
		Name:     "bio-somatic",
		Short:    "Separate somatic from germline variants in tumor/normal cohorts",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdExtract(cfg),
			newCmdSNPnexusInput(),
			newCmdAnnotate(cfg),
			newCmdReconcile(cfg),
		},
	}
}

// Run runs the subcommand named on the command line and returns the process
// exit code.
func Run() int {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("bio-somatic: environment: %v", err)
	}
	cmdline.HideGlobalFlagsExcept()
	env := cmdline.EnvFromOS()
	err = cmdline.ParseAndRun(newRoot(&cfg), env, os.Args[1:])
	return cmdline.ExitCode(err, env.Stderr)
}

// outputPath returns the path of the file derived from input: its base name
// with suffix replaced by ext, in dir, or next to input if dir is empty.
func outputPath(dir, input, suffix, ext string) string {
	base := input
	if i := strings.LastIndexByte(input, '/'); i >= 0 {
		base = input[i+1:]
		if dir == "" {
			dir = input[:i]
		}
	}
	base = strings.TrimSuffix(base, suffix) + ext
	if dir == "" {
		return base
	}
	return strings.TrimSuffix(dir, "/") + "/" + base
}
