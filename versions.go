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

// Package fount provides version information for fount-go.
package fount

import "github.com/planet-nine-app/fount-go/pkg/client"

const (
	// Version is the current version of fount-go
	Version = "0.1.0"

	// SessionlessVersion is the sessionless signing scheme implemented by pkg/sessionless
	SessionlessVersion = "1.0"

	// NineumIDFormat names the nineum unique id layout this library parses
	NineumIDFormat = "universe-galaxy-flavor-year-ordinal/32"
)

// VersionInfo contains detailed version information
type VersionInfo struct {
	FountGoVersion     string
	SessionlessVersion string
	NineumIDFormat     string
	DefaultBaseURL     string
}

// GetVersionInfo returns detailed version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		FountGoVersion:     Version,
		SessionlessVersion: SessionlessVersion,
		NineumIDFormat:     NineumIDFormat,
		DefaultBaseURL:     client.DefaultBaseURL,
	}
}
