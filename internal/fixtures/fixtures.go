// Package fixtures — встроенные JSON-файлы настроек и стартовых документов.
package fixtures

import (
	"embed"
	"io/fs"
	"os"
)

// Каталоги внутри FS.
const (
	DefaultSettingsDir  = "default_settings"
	SystemSettingsDir   = "system_settings"
	DefaultDocumentsDir = "default_documents"
)

//go:embed default_settings/*.json system_settings/*.json default_documents/*.json
var embedded embed.FS

// FS возвращает встроенные фикстуры.
func FS() fs.FS {
	return embedded
}

// Open возвращает фикстуры из каталога dir, если он задан, иначе встроенные.
func Open(dir string) (fs.FS, error) {
	if dir == "" {
		return embedded, nil
	}
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: dir, Err: fs.ErrInvalid}
	}
	return os.DirFS(dir), nil
}
