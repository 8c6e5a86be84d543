package discovery

import (
	"context"
	"sync"

	"cq-suite/src/util"
)

// Provider computes the file set once and shares it with every tool of a run
type Provider struct {
	opts Options

	mu     sync.RWMutex
	result *Result
}

// NewProvider creates a new file set provider
func NewProvider(opts Options) *Provider {
	return &Provider{opts: opts}
}

// Files returns the discovered files, walking the tree on first use
func (p *Provider) Files(ctx context.Context) ([]string, error) {
	res, err := p.Result(ctx)
	if err != nil {
		return nil, err
	}
	return res.Files, nil
}

// Result returns the full discovery result, walking the tree on first use
func (p *Provider) Result(ctx context.Context) (*Result, error) {
	p.mu.RLock()
	if p.result != nil {
		defer p.mu.RUnlock()
		util.Debug("Returning %d cached files", len(p.result.Files))
		return p.result, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if p.result != nil {
		return p.result, nil
	}

	res, err := Discover(ctx, p.opts)
	if err != nil {
		util.Error("File discovery failed: %v", err)
		return nil, err
	}

	if len(res.Files) == 0 {
		util.Warn("No files found to analyze")
	} else {
		util.Info("Found %d files to analyze", len(res.Files))
	}

	p.result = res
	return res, nil
}

// Reset drops the cached result
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.result = nil
}
