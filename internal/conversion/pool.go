package conversion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"ziptowebp/internal/logging"
)

// imageTask is one source image and the flattened output it transcodes to.
type imageTask struct {
	Source string
	Output string
}

type taskResult struct {
	task imageTask
	err  error
}

// ConvertError reports the images that failed to transcode within one job.
// Cause is the first failure in source order.
type ConvertError struct {
	Failed int
	Total  int
	Cause  error
}

func (e *ConvertError) Error() string {
	return fmt.Sprintf("%d of %d images failed: %v", e.Failed, e.Total, e.Cause)
}

func (e *ConvertError) Unwrap() error { return e.Cause }

// transcodeAll runs tasks on a bounded pool of workers and waits for every
// task to finish before returning. Failures do not stop sibling tasks. The
// returned outputs hold only tasks whose transcode succeeded, in task order.
func (p *Pipeline) transcodeAll(ctx context.Context, logger *slog.Logger, tasks []imageTask) ([]string, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	workers := p.workers
	if workers > len(tasks) {
		workers = len(tasks)
	}

	queue := make(chan int)
	results := make([]taskResult, len(tasks))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				task := tasks[idx]
				err := p.transcoder.Transcode(ctx, task.Source, task.Output)
				results[idx] = taskResult{task: task, err: err}
				if err != nil {
					continue
				}
				logger.Debug("image converted",
					logging.String("source", task.Source),
					logging.String("output", task.Output),
				)
			}
		}()
	}

	for idx := range tasks {
		queue <- idx
	}
	close(queue)
	wg.Wait()

	outputs := make([]string, 0, len(tasks))
	var convertErr *ConvertError
	for _, result := range results {
		if result.err == nil {
			outputs = append(outputs, result.task.Output)
			continue
		}
		logging.WarnWithContext(logger, "image conversion failed", "image_failed",
			logging.String("source", result.task.Source),
			logging.Error(result.err),
			logging.String(logging.FieldErrorHint, "check that the image is a readable JPEG"),
			logging.String(logging.FieldImpact, "archive will not be converted"),
		)
		if convertErr == nil {
			convertErr = &ConvertError{Total: len(tasks), Cause: result.err}
		}
		convertErr.Failed++
	}
	if convertErr != nil {
		return outputs, convertErr
	}
	return outputs, nil
}
