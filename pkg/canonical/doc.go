// Copyright (C) 2025 Planet Nine
//
// This file is part of fount-go.
//
// fount-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// fount-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with fount-go.  If not, see <https://www.gnu.org/licenses/>.

// Package canonical builds the exact strings that fount requests sign.
//
// Each operation has one pure function. Fields are concatenated in a fixed
// order with no delimiters and no escaping; integers are decimal ASCII and
// flags are "true"/"false". The server rebuilds the same string from the
// transmitted fields, so any change of order or encoding here shows up as an
// authentication failure on the server, not as a local error.
//
//	msg := canonical.Grant(ts, "U1", "U2", 200, "d")
//	// ts + "U1" + "U2" + "200" + "d"
package canonical
