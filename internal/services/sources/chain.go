package sources

import (
	"context"
	"errors"
	"fmt"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
)

// Chain is one logical source backed by ordered strategies. The first strategy that
// returns at least one record without error wins.
type Chain struct {
	name       string
	strategies []repository.Source
}

func NewChain(name string, primary repository.Source, fallbacks ...repository.Source) *Chain {
	return &Chain{name: name, strategies: append([]repository.Source{primary}, fallbacks...)}
}

func (c *Chain) Name() string { return c.name }

func (c *Chain) Fetch(ctx context.Context) (*models.FetchResult, error) {
	var errs []error
	total := &models.FetchResult{}
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := s.Fetch(ctx)
		if res != nil {
			total.Variants += res.Variants
			total.VariantsOK += res.VariantsOK
			total.Dropped += res.Dropped
			if res.StatusCode != 0 {
				total.StatusCode = res.StatusCode
			}
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		if res == nil || len(res.Records) == 0 {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), repository.ErrNoRecords))
			continue
		}
		total.Records = res.Records
		return total, nil
	}
	return total, fmt.Errorf("%s: all strategies failed: %w", c.name, errors.Join(errs...))
}
