// Copyright 2025 TrackForge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cor_test contains unit tests for the chain-of-responsibility
// building blocks. This file covers chain execution: output piping, stop on
// first error, and the cancellation check between commands.
package cor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trackforge/go-video-gen/internal/core/cor"
)

// appendCommand appends its own name to the incoming string and passes the
// result down the chain, recording every invocation.
type appendCommand struct {
	cor.BaseCommand
	calls *[]string
	fail  error
}

func newAppendCommand(name string, calls *[]string, fail error) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), calls: calls, fail: fail}
}

func (c *appendCommand) Execute(ctx cor.Context) {
	*c.calls = append(*c.calls, c.GetName())
	if c.fail != nil {
		ctx.AddError(c.GetName(), c.fail)
		return
	}
	in := ctx.Get(c.GetInputParam()).(string)
	ctx.Add(c.GetOutputParam(), in+"|"+c.GetName())
}

func newChainContext(t *testing.T, goCtx context.Context) cor.Context {
	t.Helper()
	ctx := cor.NewBaseContextWithRoot(t.TempDir())
	ctx.SetContext(goCtx)
	ctx.Add(cor.CtxIn, "start")
	return ctx
}

func TestChainPipesOutputToNextInput(t *testing.T) {
	var calls []string
	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(newAppendCommand("first", &calls, nil))
	chain.AddCommand(newAppendCommand("second", &calls, nil))

	ctx := newChainContext(t, context.Background())
	chain.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, "start|first|second", ctx.Get(cor.CtxIn))
}

func TestChainStopsAtFirstError(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(newAppendCommand("first", &calls, nil))
	chain.AddCommand(newAppendCommand("second", &calls, boom))
	chain.AddCommand(newAppendCommand("third", &calls, nil))

	ctx := newChainContext(t, context.Background())
	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Equal(t, []string{"first", "second"}, calls, "third never runs")
	assert.Equal(t, boom, ctx.GetErrors()["second"])
}

func TestChainContinueOnFailureRunsAllCommands(t *testing.T) {
	var calls []string
	chain := cor.NewBaseChain("test-chain")
	chain.ContinueOnFailure(true)
	chain.AddCommand(newAppendCommand("first", &calls, errors.New("boom")))
	chain.AddCommand(newAppendCommand("second", &calls, nil))

	ctx := newChainContext(t, context.Background())
	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Contains(t, calls, "second")
}

func TestChainStopsWhenContextIsCanceled(t *testing.T) {
	var calls []string
	goCtx, cancel := context.WithCancel(context.Background())
	cancel()

	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(newAppendCommand("first", &calls, nil))

	ctx := newChainContext(t, goCtx)
	chain.Execute(ctx)

	assert.Empty(t, calls, "a canceled job never starts its next stage")
	assert.True(t, ctx.HasErrors())
	for _, err := range ctx.GetErrors() {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
