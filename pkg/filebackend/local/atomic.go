package local

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/f9labs/gofilebackend/pkg/logging"
)

// temporaryNamePrefix is the file name prefix used for intermediate
// temporary files created during atomic writes.
const temporaryNamePrefix = ".gofilebackend-write-"

// writeFileAtomic writes data to path by way of an intermediate temporary
// file in the same directory, swapped into place with a rename. This
// guarantees that any reader of path either sees the complete previous
// contents or the complete new contents, never a partial write.
func writeFileAtomic(path string, data []byte, permissions os.FileMode, log *logging.Logger) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), temporaryNamePrefix)
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	temporaryName := temporary.Name()

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		removeLogged(temporaryName, log)
		return fmt.Errorf("unable to write data to temporary file: %w", err)
	}

	if err := temporary.Close(); err != nil {
		removeLogged(temporaryName, log)
		return fmt.Errorf("unable to close temporary file: %w", err)
	}

	if err := setPermissions(temporaryName, permissions); err != nil {
		removeLogged(temporaryName, log)
		return fmt.Errorf("unable to set temporary file permissions: %w", err)
	}

	if err := renameCrossDevice(temporaryName, path); err != nil {
		removeLogged(temporaryName, log)
		return fmt.Errorf("unable to rename temporary file into place: %w", err)
	}

	return nil
}

// renameCrossDevice renames source to destination, falling back to a
// copy-then-remove when the two paths live on different devices (the
// common cause of os.Rename failing with syscall.EXDEV).
func renameCrossDevice(source, destination string) error {
	err := os.Rename(source, destination)
	if err == nil {
		return nil
	}
	if !isCrossDeviceError(err) {
		return err
	}

	input, openErr := os.Open(source)
	if openErr != nil {
		return err
	}
	defer input.Close()

	info, statErr := input.Stat()
	if statErr != nil {
		return err
	}

	output, createErr := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if createErr != nil {
		return err
	}

	if _, copyErr := io.Copy(output, input); copyErr != nil {
		output.Close()
		return copyErr
	}
	if closeErr := output.Close(); closeErr != nil {
		return closeErr
	}

	return os.Remove(source)
}

// removeLogged removes a temporary file, logging (rather than propagating)
// any failure, since these cleanup attempts occur only on an error path
// that already has its own error to report.
func removeLogged(path string, log *logging.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Debugf("unable to remove temporary file %s: %v", path, err)
	}
}
