package services

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const archiveExtension = ".zip"

// ZipDirectory compresses every regular file below srcDir into destPath, with entry
// names relative to srcDir.
func ZipDirectory(srcDir, destPath string) (err error) {
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			os.Remove(destPath)
		}
	}()

	zw := zip.NewWriter(out)
	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		return addZipEntry(zw, path, filepath.ToSlash(rel))
	})
	if walkErr != nil {
		zw.Close()
		return fmt.Errorf("archive %s: %w", srcDir, walkErr)
	}
	return zw.Close()
}

func addZipEntry(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

// ReserveCollectionDir creates a fresh directory for a collection under root. When
// <name> or <name>.zip already exists, " (2)", " (3)", ... are tried in turn.
func ReserveCollectionDir(root, name string) (string, error) {
	for i := 1; i < 1000; i++ {
		candidate := name
		if i > 1 {
			candidate = fmt.Sprintf("%s (%d)", name, i)
		}
		dir := filepath.Join(root, candidate)
		if exists(dir + archiveExtension) {
			continue
		}
		if err := os.Mkdir(dir, 0o755); err != nil {
			if os.IsExist(err) {
				continue
			}
			return "", fmt.Errorf("create collection directory: %w", err)
		}
		return dir, nil
	}
	return "", fmt.Errorf("no free directory name for %q", name)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
