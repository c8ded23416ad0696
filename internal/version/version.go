/*
 * Copyright (c) 2026 by the pdfslicer authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package version exposes the application version for logs, reports and the CLI.
package version

import "fmt"

// Version is the semantic version of the application.
// It can be overridden at build time:
//
//	go build -ldflags "-X pdfslicer/internal/version.Version=1.2.3"
var Version = "0.1.0-dev"

// Codename is a human-friendly release name, empty for dev builds.
var Codename = ""

// String returns the full version string.
func String() string {
	if Codename == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, Codename)
}
