package entity

import (
	"path"
	"path/filepath"
	"strings"
)

// ImageRecord описывает один входной файл, найденный при обходе каталога.
type ImageRecord struct {
	Path     string // абсолютный путь к файлу
	RelDir   string // каталог относительно корня ввода ("." для корня)
	Filename string // имя файла с расширением
}

// BaseName возвращает имя файла без расширения.
func (r ImageRecord) BaseName() string {
	return strings.TrimSuffix(r.Filename, filepath.Ext(r.Filename))
}

// Stem возвращает относительный путь без расширения, от которого строятся имена артефактов.
func (r ImageRecord) Stem() string {
	if r.RelDir == "" || r.RelDir == "." {
		return r.BaseName()
	}
	return filepath.Join(r.RelDir, r.BaseName())
}

// Name возвращает относительное имя файла со слэшами, это ключ строки в сводке.
func (r ImageRecord) Name() string {
	if r.RelDir == "" || r.RelDir == "." {
		return r.Filename
	}
	return path.Join(filepath.ToSlash(r.RelDir), r.Filename)
}
