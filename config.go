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

import "vclock/service"

// Config and LogFunc are aliases of the service package's types: Config is
// defined there (not here) because service.Clock needs it and this package
// already depends on service for the global accessor, so defining it here
// too would create an import cycle. See service/config.go for field docs.
type Config = service.Config
type LogFunc = service.LogFunc
