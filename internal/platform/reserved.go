// SPDX-License-Identifier: MPL-2.0

package platform

import "strings"

// reservedNames cannot be used as file names on Windows, with or without
// an extension.
var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// IsPortableFileName reports whether name can be used as a single path
// element on every supported platform: no separators, no "." or "..",
// no characters Windows rejects and no reserved device name.
func IsPortableFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\:*?"<>|`) || strings.HasSuffix(name, ".") || strings.HasSuffix(name, " ") {
		return false
	}
	for _, r := range name {
		if r < 0x20 {
			return false
		}
	}
	base, _, _ := strings.Cut(strings.ToUpper(name), ".")
	_, reserved := reservedNames[base]
	return !reserved
}
