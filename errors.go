// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
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

package vclock

import (
	"errors"

	"vclock/transform"
)

// ErrProductionViolation is returned when a caller attempts to accelerate the
// clock (any rate other than 1) while Config.IsProduction is set. It is the
// same sentinel transform.ErrProductionViolation, re-exported here so callers
// using the global accessor don't need to import the transform package.
var ErrProductionViolation = transform.ErrProductionViolation

// ErrNotInitialized is returned by the global accessor when Service is
// called before Setup.
var ErrNotInitialized = errors.New("vclock: global clock accessed before Setup")
