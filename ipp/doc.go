// This file is part of ippcode22 - an IPPcode22 interpreter.
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

// Package ipp implements the IPPcode22 execution engine: the typed value
// model, instruction decoding, the frame manager, the loader/validator,
// and the dispatch loop that runs a loaded Program against a pair of byte
// streams.
//
// The package never imports an XML library. Callers supply a parsed tree
// through the Element interface (see package xmlsrc for an
// encoding/xml-backed implementation) so the XML reader stays an external
// collaborator, as scoped by the specification this engine implements.
package ipp
