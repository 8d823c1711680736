package cli

import (
	"context"
	"strings"
)

// Generate takes the prompt from the rest of the line, or asks for a
// multi-line one when it is missing.
func (a *App) Generate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("generate <platform> [prompt]")
	}
	platform := args[0]
	prompt := strings.Join(args[1:], " ")
	if prompt == "" {
		var err error
		prompt, err = GetMultiline(a.reader, "Enter the prompt", a.out)
		if err != nil {
			return err
		}
	}

	item, err := a.contents.Generate(ctx, platform, prompt)
	if err != nil {
		return err
	}
	a.printf("--- %s (%s)\n%s\n", item.Platform, formatTime(item.CreatedAt), item.Content)
	return nil
}

// Bulk reads one prompt per line and generates an item for each.
func (a *App) Bulk(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("bulk <platform>")
	}
	text, err := GetMultiline(a.reader, "Enter one prompt per line", a.out)
	if err != nil {
		return err
	}

	items, err := a.contents.GenerateBatch(ctx, args[0], strings.Split(text, "\n"))
	for _, item := range items {
		a.printf("--- %s (%s) %s\n%s\n", item.Platform, formatTime(item.CreatedAt), shortID(item.ID), item.Content)
	}
	if err != nil {
		return err
	}
	a.printf("Generated %d items.\n", len(items))
	return nil
}

func (a *App) Suggest(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("suggest <url>")
	}
	suggestions, err := a.contents.Suggestions(ctx, args[0])
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		a.printf("No suggestions.\n")
		return nil
	}
	for _, s := range suggestions {
		a.printf("  * %s\n", s)
	}
	return nil
}

func (a *App) Contents(ctx context.Context) error {
	items, err := a.contents.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		a.printf("No generated content yet.\n")
		return nil
	}
	for _, item := range items {
		a.printf("--- %s (%s) %s\n%s\n", item.Platform, formatTime(item.CreatedAt), shortID(item.ID), item.Content)
	}
	return nil
}
