package cli

import (
	"os"
	"path/filepath"

	"github.com/JeNeSuisPasDave/MarkdownTools/pkg/errors"
)

// stdinName is the positional argument that selects stdin as the input.
const stdinName = "-"

// validateInputs checks the positional arguments before any scanning
// begins. It returns the absolute input paths, or useStdin=true when the
// sole argument is "-". Stdin cannot be combined with named files.
func validateInputs(args []string) (paths []string, useStdin bool, err error) {
	if len(args) == 0 {
		return nil, false, errors.New(errors.ErrCodeInvalidInput,
			"at least one input is required: either '-' for stdin, or a list of files")
	}
	if len(args) == 1 && args[0] == stdinName {
		return nil, true, nil
	}
	for _, arg := range args {
		if arg == stdinName {
			return nil, false, errors.New(errors.ErrCodeInvalidInput,
				"cannot combine stdin ('-') with named input files")
		}
		st, err := os.Stat(arg)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeFileNotFound, err,
				"input %q does not exist", arg)
		}
		if !st.Mode().IsRegular() {
			return nil, false, errors.New(errors.ErrCodeInvalidPath,
				"input %q is not a regular file", arg)
		}
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInvalidPath, err,
				"cannot resolve input %q", arg)
		}
		paths = append(paths, abs)
	}
	return paths, false, nil
}

// validateOutput checks that path either names an overwritable regular
// file or can be created inside an existing directory. It returns the
// absolute path.
func validateOutput(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot resolve output %q", path)
	}
	if st, err := os.Stat(abs); err == nil {
		if !st.Mode().IsRegular() {
			return "", errors.New(errors.ErrCodeInvalidPath,
				"%q is not a regular file and cannot be overwritten", path)
		}
		return abs, nil
	}
	dir := filepath.Dir(abs)
	st, err := os.Stat(dir)
	if err != nil {
		return "", errors.New(errors.ErrCodeInvalidPath,
			"directory %q does not exist; invalid output path", dir)
	}
	if !st.IsDir() {
		return "", errors.New(errors.ErrCodeInvalidPath,
			"%q is not a directory; invalid output path", dir)
	}
	return abs, nil
}
