// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package analytics

import "fmt"

// UnsupportedComparisonError rejects a comparison mode outside the
// supported set. A misconfigured mode is an operator mistake, so it
// fails the request instead of silently picking a fallback.
type UnsupportedComparisonError struct {
	Mode string
}

func (e *UnsupportedComparisonError) Error() string {
	return fmt.Sprintf("unsupported comparison mode %q (valid: %s, %s)",
		e.Mode, ModeYearOverYear, ModeMonthOverMonth)
}

// DataError represents insufficient or malformed input data.
type DataError struct {
	DataType string
	Message  string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error for %s: %s", e.DataType, e.Message)
}
