// Copyright 2020-2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package db

import "errors"

// ErrInputMutationDuringQuery is returned by SetInput when a query is
// currently executing anywhere in the engine. Inputs may only be mutated
// between top-level query sessions.
var ErrInputMutationDuringQuery = errors.New("db: cannot mutate an input while a query is executing")
