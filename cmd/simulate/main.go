package main

import (
	"context"
	"fmt"
	"time"

	"ai-career-counsel-be/pkg/counsel"
	"ai-career-counsel-be/pkg/generator"
	"ai-career-counsel-be/pkg/scroll"

	"github.com/fatih/color"
)

// A scripted conversation walkthrough that exercises the persona
// resolver, a canned generation provider and the scroll synchronizer
// without a running server or database.

const messageHeight = 60.0

func main() {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	faint := color.New(color.Faint)

	cyan.Println("=== Career Counseling Simulation ===")

	userContext, greeting := counsel.Resolve(counsel.PersonaStudent, "Software Engineering")
	fmt.Printf("Context: %s\n\n", userContext)

	provider := generator.NewMockProvider("")
	sync := scroll.NewSynchronizer()

	view := scroll.Viewport{ScrollTop: 0, ScrollHeight: 0, ClientHeight: 400}

	appendMessage := func(sender, text string) {
		view.ScrollHeight += messageHeight
		if target, ok := sync.OnAppend(view); ok {
			view.ScrollTop = target - view.ClientHeight
			if view.ScrollTop < 0 {
				view.ScrollTop = 0
			}
		}
		switch sender {
		case "user":
			green.Printf("USER: %s\n", text)
		default:
			yellow.Printf("AI:   %s\n", text)
		}
		if sync.ShowJumpAffordance() {
			faint.Println("      [new messages below ↓]")
		}
	}

	appendMessage("ai", greeting)

	questions := []string{
		"What languages should I learn first?",
		"Is a degree required to get hired?",
		"How do I prepare for technical interviews?",
	}

	ctx := context.Background()
	for i, q := range questions {
		time.Sleep(200 * time.Millisecond)
		appendMessage("user", q)

		reply, err := provider.Generate(ctx, userContext, q)
		if err != nil {
			reply = "(generation failed)"
		}

		// Midway through, the user scrolls up to reread history.
		if i == 1 {
			view.ScrollTop = 0
			sync.Observe(view)
			faint.Println("      -- user scrolled to the top --")
		}

		appendMessage("ai", reply)
	}

	// Jump back to the live edge.
	if target, ok := sync.JumpToLatest(view, true); ok {
		view.ScrollTop = target - view.ClientHeight
		faint.Println("      -- jumped to latest --")
	}

	cyan.Printf("\nDone. %d generations, following latest: %v\n", provider.Calls, sync.FollowLatest())
}
