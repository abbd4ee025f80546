// Package deploy prepares the files the infrastructure stack uploads: a zip of
// the lambda directory and a copy of the site template.
package deploy

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Default names within the dist directory.
const (
	ZipName      = "crud_lambda_function.zip"
	TemplateName = "index.html.template"
)

// Layout names the inputs and outputs of Prepare.
type Layout struct {
	LambdaDir    string
	SiteTemplate string
	DistDir      string
	ZipName      string
	TemplateName string
}

// DefaultLayout returns the layout rooted at baseDir: src/lambda is zipped
// and src/site/index.html copied, both into dist.
func DefaultLayout(baseDir string) Layout {
	return Layout{
		LambdaDir:    filepath.Join(baseDir, "src", "lambda"),
		SiteTemplate: filepath.Join(baseDir, "src", "site", "index.html"),
		DistDir:      filepath.Join(baseDir, "dist"),
		ZipName:      ZipName,
		TemplateName: TemplateName,
	}
}

// ZipPath is where Prepare writes the lambda archive.
func (l Layout) ZipPath() string {
	return filepath.Join(l.DistDir, l.ZipName)
}

// TemplatePath is where Prepare copies the site template.
func (l Layout) TemplatePath() string {
	return filepath.Join(l.DistDir, l.TemplateName)
}

// Prepare creates the dist directory when missing, zips the lambda directory
// and copies the site template.
func Prepare(l Layout, logger logrus.FieldLogger) error {
	if err := os.MkdirAll(l.DistDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed creating %v", l.DistDir)
	}

	count, err := ZipDir(l.LambdaDir, l.ZipPath())
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"src":   l.LambdaDir,
		"zip":   l.ZipPath(),
		"files": count,
	}).Info("zipped lambda directory")

	if err := CopyFile(l.SiteTemplate, l.TemplatePath()); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"src": l.SiteTemplate,
		"dst": l.TemplatePath(),
	}).Info("copied site template")

	return nil
}

// ZipDir writes every regular file below srcDir into a deflated archive at
// zipPath, named by its slash separated path relative to srcDir. Files are
// added in lexical order. The archive itself is skipped when it lives inside
// srcDir. It returns the number of files written. On failure no archive is
// left at zipPath.
func ZipDir(srcDir string, zipPath string) (int, error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return 0, errors.Wrapf(err, "failed reading %v", srcDir)
	}

	if !info.IsDir() {
		return 0, errors.Errorf("%v is not a directory", srcDir)
	}

	absSrc, err := filepath.Abs(srcDir)
	if err != nil {
		return 0, errors.Wrapf(err, "failed resolving %v", srcDir)
	}

	absZip, err := filepath.Abs(zipPath)
	if err != nil {
		return 0, errors.Wrapf(err, "failed resolving %v", zipPath)
	}

	skip := ""
	if rel, err := filepath.Rel(absSrc, absZip); err == nil {
		skip = filepath.ToSlash(rel)
	}

	count, err := zipFS(os.DirFS(srcDir), zipPath, skip)
	if err != nil {
		return 0, errors.Wrapf(err, "failed zipping %v", srcDir)
	}

	return count, nil
}

// zipFS archives every regular file of fsys except skip into zipPath.
func zipFS(fsys fs.FS, zipPath string, skip string) (int, error) {
	out, err := os.Create(zipPath)
	if err != nil {
		return 0, errors.Wrapf(err, "failed creating %v", zipPath)
	}

	zw := zip.NewWriter(out)
	count := 0

	err = fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() || name == skip {
			return nil
		}

		if err := addFile(zw, fsys, d, name); err != nil {
			return err
		}

		count++
		return nil
	})

	if err == nil {
		err = zw.Close()
	}

	if err != nil {
		out.Close()
		os.Remove(zipPath)
		return 0, err
	}

	return count, out.Close()
}

func addFile(zw *zip.Writer, fsys fs.FS, d fs.DirEntry, name string) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	in, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()

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

	_, err = io.Copy(w, in)
	return err
}

// CopyFile copies src to dst, replacing dst and keeping the permission bits
// of src.
func CopyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed opening %v", src)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrapf(err, "failed reading %v", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "failed creating %v", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "failed copying %v to %v", src, dst)
	}

	return out.Close()
}
