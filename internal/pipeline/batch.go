package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"ruh-integration-pages/internal/models"
)

type BatchReport struct {
	RunID     string           `json:"runId"`
	Requested int              `json:"requested"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Exhausted bool             `json:"exhausted"`
	Outcomes  []models.Outcome `json:"outcomes"`
}

// Batch processes up to count pending connectors in order, pausing delay
// between items. It stops early when nothing is pending or ctx is done.
// A connector whose generation fails stays pending and is picked again by
// the next iteration.
func (p *Pipeline) Batch(ctx context.Context, count int, delay time.Duration) (BatchReport, error) {
	rep := BatchReport{RunID: uuid.NewString(), Requested: count}
	log := p.log.With("run", rep.RunID)
	log.Infof("starting batch of %d pages", count)

	for i := 0; i < count; i++ {
		out, err := p.next(ctx, log)
		if errors.Is(err, ErrNoPending) {
			rep.Exhausted = true
			log.Infof("all connectors have been published")
			break
		}
		if err != nil {
			return rep, err
		}

		rep.Outcomes = append(rep.Outcomes, out)
		if out.Success {
			rep.Succeeded++
		} else {
			rep.Failed++
		}
		log.Infof("[%d/%d] %s done (success=%t)", i+1, count, out.Connector, out.Success)

		if i < count-1 {
			log.Debugf("waiting %s", delay)
			if err := p.sleep(ctx, delay); err != nil {
				return rep, err
			}
		}
	}

	log.Infof("batch complete: %d succeeded, %d failed", rep.Succeeded, rep.Failed)
	return rep, nil
}
