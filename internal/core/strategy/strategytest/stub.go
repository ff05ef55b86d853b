// Package strategytest provides a scripted strategy for testing dispatchers.
package strategytest

import (
	"context"
	"sync"

	"crudrouter/internal/core/domain"
	"crudrouter/internal/core/strategy"
)

// Outcome is what a scripted method returns.
type Outcome struct {
	Result any
	Err    error
}

// Script maps method names to outcomes. Missing methods return (nil, nil).
type Script map[string]Outcome

// Recorder collects the data each stub was built with and the methods called on it.
type Recorder struct {
	mu    sync.Mutex
	Data  []domain.Record
	Opts  []strategy.Options
	Calls []string
}

func (r *Recorder) built(data domain.Record, opts strategy.Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Data = append(r.Data, data)
	r.Opts = append(r.Opts, opts)
}

func (r *Recorder) called(method string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, method)
}

// LastData returns the data the most recent stub was built with.
func (r *Recorder) LastData() domain.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Data) == 0 {
		return nil
	}
	return r.Data[len(r.Data)-1]
}

// Stub is a strategy whose results come from a Script.
type Stub struct {
	strategy.Base
	script   Script
	recorder *Recorder
}

var _ strategy.Strategy = (*Stub)(nil)

// Constructor returns a strategy.Constructor producing stubs that follow script. recorder may be nil.
func Constructor(script Script, recorder *Recorder) strategy.Constructor {
	return func(data domain.Record, opts strategy.Options) (strategy.Strategy, error) {
		if recorder != nil {
			recorder.built(data, opts)
		}
		return &Stub{Base: strategy.NewBase(data, opts), script: script, recorder: recorder}, nil
	}
}

func (s *Stub) play(method string) (any, error) {
	if s.recorder != nil {
		s.recorder.called(method)
	}

	out := s.script[method]
	if out.Err != nil {
		return nil, strategy.NewQueryError(method, out.Err)
	}
	return out.Result, nil
}

func (s *Stub) FindAll(ctx context.Context) (any, error) {
	return s.play(strategy.MethodFindAll)
}

func (s *Stub) FindOneByID(ctx context.Context, lookup any) (any, error) {
	return s.play(strategy.MethodFindOneByID)
}

func (s *Stub) Create(ctx context.Context, value domain.Record) (any, error) {
	return s.play(strategy.MethodCreate)
}

func (s *Stub) Update(ctx context.Context, value domain.Record) (any, error) {
	return s.play(strategy.MethodUpdate)
}

func (s *Stub) Delete(ctx context.Context, lookup any) (any, error) {
	return s.play(strategy.MethodDelete)
}

func (s *Stub) Exists(ctx context.Context, field string, value any) (bool, error) {
	res, err := s.play(strategy.MethodExists)
	exists, _ := res.(bool)
	return exists, err
}
