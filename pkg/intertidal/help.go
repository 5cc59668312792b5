package intertidal

import (
	"fmt"

	"github.com/pkg/browser"
	"go.uber.org/zap"
)

// HelpTask is a help document being opened in the background.
type HelpTask struct {
	done chan struct{}
	err  error
}

// Wait blocks until the document has been handed to the opener and
// returns the opener's error.
func (t *HelpTask) Wait() error {
	<-t.done
	return t.err
}

// OpenHelp opens the help document on a background goroutine and returns
// immediately. The task touches no session state.
func (s *Session) OpenHelp() *HelpTask {
	open := s.opts.OpenHelp
	if open == nil {
		open = browser.OpenFile
	}
	path := s.opts.HelpPath
	logger := s.logger

	task := &HelpTask{done: make(chan struct{})}
	s.help.Add(1)
	go func() {
		defer s.help.Done()
		defer close(task.done)

		if path == "" {
			task.err = fmt.Errorf("open help: %w: no help document configured", ErrDataSourceUnavailable)
		} else if err := open(path); err != nil {
			task.err = fmt.Errorf("open help: %w: %w", ErrDataSourceUnavailable, err)
		}
		if task.err != nil {
			logger.Warn("help not opened", zap.String("path", path), zap.Error(task.err))
		}
	}()
	return task
}
