// Package archive packs build directories into zip files for distribution.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// Ext is appended to a directory name to form its archive name.
const Ext = ".zip"

// Dir writes every file and directory under srcDir into a zip at zipPath.
// Entry names are relative to srcDir and use forward slashes; directories
// get their own "name/" entries. Entries are written in lexical order.
func Dir(fsys afero.Fs, srcDir, zipPath string) (err error) {
	out, err := fsys.OpenFile(zipPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("archive %s: %w", srcDir, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("archive %s: %w", srcDir, cerr)
		}
	}()

	zw := zip.NewWriter(out)
	walkErr := afero.Walk(fsys, srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		return addEntry(fsys, zw, path, filepath.ToSlash(rel), info)
	})
	if walkErr != nil {
		zw.Close()
		return fmt.Errorf("archive %s: %w", srcDir, walkErr)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive %s: %w", srcDir, err)
	}
	return nil
}

func addEntry(fsys afero.Fs, zw *zip.Writer, path, name string, info os.FileInfo) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name

	if info.IsDir() {
		hdr.Name += "/"
		hdr.Method = zip.Store
		_, err := zw.CreateHeader(hdr)
		return err
	}

	hdr.Method = zip.Deflate
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	f, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// Subdirs zips each immediate sub-directory of buildDir into
// distDir/<name>.zip, creating distDir if needed. Regular files directly in
// buildDir are skipped. Returns the archive paths in lexical order.
func Subdirs(fsys afero.Fs, buildDir, distDir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, buildDir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", buildDir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	if err := fsys.MkdirAll(distDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", distDir, err)
	}

	var written []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		zipPath := filepath.Join(distDir, e.Name()+Ext)
		if err := Dir(fsys, filepath.Join(buildDir, e.Name()), zipPath); err != nil {
			return written, err
		}
		written = append(written, zipPath)
	}
	return written, nil
}
