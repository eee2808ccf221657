package gesture

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/esimov/gesture/utils"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// traceExtensions lists the file extensions of trace scripts.
var traceExtensions = []string{".yaml", ".yml"}

// Ops describes a batch replay: Src and Dst are files, directories or the
// pipe name, in which case stdin/stdout are used.
type Ops struct {
	Src, Dst, PipeName string
	Workers            int
	// Options are applied to the Gesture replaying each trace.
	Options []Option
	// Stderr receives the status messages. Defaults to os.Stderr.
	Stderr io.Writer
}

// result holds the relevant information about the replay of a single trace.
type result struct {
	path     string
	gestures []Name
	err      error
}

// Execute replays the source trace(s) and writes the gesture reports to the destination.
// A directory source is processed concurrently and mirrored into the destination directory.
func (op *Ops) Execute() error {
	var (
		fs  os.FileInfo
		err error
	)
	src := op.Src

	// Check if source path is a local trace or URL.
	if utils.IsValidUrl(src) {
		f, err := utils.Fetch(src)
		if err != nil {
			return fmt.Errorf("failed to load the source trace: %w", err)
		}
		defer os.Remove(f.Name())
		if err := f.Close(); err != nil {
			log.Printf("could not close the downloaded file: %v", err)
		}
		src = f.Name()
	}

	// Check if the source is a pipe name or a regular file.
	if src == op.PipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(src)
	}
	if err != nil {
		return fmt.Errorf("failed to load the source trace: %w", err)
	}

	now := time.Now()

	switch mode := fs.Mode(); {
	case mode.IsDir():
		err = op.executeDir(src)
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0: // check for regular files or pipe names
		ext := filepath.Ext(op.Dst)
		if !isValidExtension(ext, traceExtensions) && op.Dst != op.PipeName {
			return fmt.Errorf("%v file type not supported", ext)
		}
		var gestures []Name
		gestures, err = op.process(src, op.Dst)
		op.printOpStatus(op.Dst, gestures, err)
	default:
		return fmt.Errorf("unsupported source: %s", src)
	}

	if err == nil {
		fmt.Fprintf(op.stderr(), "\nExecution time: %s\n",
			utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage),
		)
	}
	return err
}

// executeDir replays every trace found under src using a bounded pool of workers.
func (op *Ops) executeDir(src string) error {
	var (
		wg   sync.WaitGroup
		errs []error
	)
	if err := os.MkdirAll(op.Dst, 0755); err != nil {
		return fmt.Errorf("unable to create the destination directory: %w", err)
	}

	// Limit the concurrently running workers to maxWorkers.
	workers := op.Workers
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
	}

	ch := make(chan result)
	done := make(chan interface{})
	defer close(done)

	paths, errc := walkDir(done, src, traceExtensions)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(op.Dst, ch, done, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	for res := range ch {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.path, res.err))
		}
		op.printOpStatus(res.path, res.gestures, res.err)
	}

	if err := <-errc; err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// consumer reads the path names from the paths channel and replays each trace.
func (op *Ops) consumer(
	dest string,
	res chan<- result,
	done <-chan interface{},
	paths <-chan string,
) {
	for src := range paths {
		dst := filepath.Join(dest, filepath.Base(src))
		gestures, err := op.process(src, dst)

		select {
		case <-done:
			return
		case res <- result{
			path:     src,
			gestures: gestures,
			err:      err,
		}:
		}
	}
}

// process replays the trace found in the input, writes the report to the
// output and returns the recognized gestures.
func (op *Ops) process(in, out string) ([]Name, error) {
	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		return nil, err
	}

	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			if err := f.Close(); err != nil {
				log.Printf("could not close the opened file: %v", err)
			}
		}
	}()

	dstFile, isFile := dst.(*os.File)
	if isFile && dstFile == os.Stdout {
		isFile = false
	}
	defer func() {
		if isFile {
			if err := dstFile.Close(); err != nil {
				log.Printf("could not close the opened file: %v", err)
			}
		}
	}()

	gestures, err := op.replay(src, dst, filepath.Base(in))
	if err != nil && isFile {
		// remove the generated report in case of an error
		os.Remove(dstFile.Name())
	}
	return gestures, err
}

func (op *Ops) replay(r io.Reader, w io.Writer, name string) ([]Name, error) {
	tr, err := DecodeTrace(r)
	if err != nil {
		return nil, err
	}
	if tr.Name == "" {
		tr.Name = name
	}
	rep, err := Replay(tr, op.Options...)
	if err != nil {
		return nil, err
	}
	if err := rep.Encode(w); err != nil {
		return nil, err
	}
	return rep.Gestures(), nil
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

// printOpStatus displays the relevant information about the replay of a trace.
func (op *Ops) printOpStatus(fname string, gestures []Name, err error) {
	w := op.stderr()
	if err != nil {
		fmt.Fprintf(w, "%s %s\n",
			utils.DecorateText("Error replaying trace: "+filepath.Base(fname), utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v", err), utils.DefaultMessage),
		)
		return
	}
	if fname != op.PipeName {
		fmt.Fprintf(w, "The gesture report has been saved as: %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
		)
	}
	if len(gestures) > 0 {
		list := make([]string, len(gestures))
		for i, n := range gestures {
			list[i] = n.String()
		}
		fmt.Fprintf(w, "\tGestures: %s\n",
			utils.DecorateText(strings.Join(list, ", "), utils.GestureMessage),
		)
	}
}

func (op *Ops) stderr() io.Writer {
	if op.Stderr != nil {
		return op.Stderr
	}
	return os.Stderr
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each regular file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan interface{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			if !isValidExtension(filepath.Ext(f.Name()), srcExts) {
				return nil
			}

			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if ex == ext {
			return true
		}
	}
	return false
}
