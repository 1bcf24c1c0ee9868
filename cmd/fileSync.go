package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// syncChunkSize is the copy buffer used for SFTP uploads.
const syncChunkSize = 8 * 1024

// exec uploads <dir>/<source> to the remote destination over SFTP. The
// destination is used verbatim: parent directories are not created and file
// modes are not carried over.
func (f *fileSyncTask) exec(client hostClient, dir string) (n int64, err error) {
	src, err := os.Open(f.sourcePath(dir))
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = src.Close() }()

	sc, err := client.NewSFTP()
	if err != nil {
		return 0, fmt.Errorf("start sftp: %w", err)
	}
	defer func() { _ = sc.Close() }()

	dst, err := sc.Create(f.Destination)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", f.Destination, err)
	}

	n, err = copyChunks(dst, bufio.NewReader(src))
	if cerr := dst.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", f.Destination, cerr)
	}
	return n, err
}

// sourcePath resolves Source against the scroll directory. Absolute sources
// are left alone.
func (f *fileSyncTask) sourcePath(dir string) string {
	if filepath.IsAbs(f.Source) {
		return f.Source
	}
	return filepath.Join(dir, f.Source)
}

// copyChunks copies r to w in syncChunkSize reads until EOF.
func copyChunks(w io.Writer, r io.Reader) (int64, error) {
	buf := make([]byte, syncChunkSize)
	var total int64
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return total, fmt.Errorf("write: %w", err)
			}
			total += int64(n)
		}
		if errors.Is(rerr, io.EOF) {
			return total, nil
		}
		if rerr != nil {
			return total, fmt.Errorf("read: %w", rerr)
		}
	}
}
