package fileset

import "strings"

// FileType doubles as the canonical file extension.
type FileType string

const (
	AppImage FileType = "AppImage" // installer image
	Exe      FileType = "exe"      // windows executable
	Apk      FileType = "apk"      // android package
	Notes    FileType = "md"
)

// FileTypes lists every known type in upload order.
var FileTypes = []FileType{AppImage, Exe, Apk, Notes}

// CanonicalName returns <product>-<version>.<ext>
func CanonicalName(product, version string, t FileType) string {
	return product + "-" + version + "." + string(t)
}

// NotesFileName is where the release notes of tag are stored.
func NotesFileName(tag string) string {
	return "release_notes_" + tag + "." + string(Notes)
}

func typePattern() string {
	names := make([]string, len(FileTypes))
	for i, t := range FileTypes {
		names[i] = string(t)
	}
	return strings.Join(names, "|")
}
