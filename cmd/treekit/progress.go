package main

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/treekit/treekit/pkg/operation"
)

// progressBar adapts engine progress snapshots onto a pterm progress bar.
// The bar is created lazily, once the first snapshot carries the planned
// operation total.
type progressBar struct {
	title     string
	bar       *pterm.ProgressbarPrinter
	lastIndex int
}

func newProgressBar(title string) *progressBar {
	return &progressBar{title: title}
}

func (p *progressBar) handler(prog operation.Progress) {
	if p.bar == nil {
		if prog.TotalOperations == 0 {
			return
		}
		bar, err := pterm.DefaultProgressbar.
			WithTotal(prog.TotalOperations).
			WithTitle(p.title).
			Start()
		if err != nil {
			return
		}
		p.bar = bar
	}

	if prog.OperationIndex > p.lastIndex {
		p.bar.Add(prog.OperationIndex - p.lastIndex)
		p.lastIndex = prog.OperationIndex
		p.bar.UpdateTitle(fmt.Sprintf("%s %s", prog.CurrentOperation, prog.CurrentPath))
	}
}

func (p *progressBar) stop() {
	if p.bar != nil {
		_, _ = p.bar.Stop()
	}
}
