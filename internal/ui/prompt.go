package ui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/manifoldco/promptui"
)

// ErrCancelled is returned when the user aborts a prompt
var ErrCancelled = errors.New("operation cancelled by user")

// ConfirmPrompt asks a yes/no confirmation question
func ConfirmPrompt(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	result, err := prompt.Run()
	if err != nil {
		// promptui reports a plain "no" as ErrAbort
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return false, ErrCancelled
		}
		return false, err
	}

	return strings.EqualFold(result, "y"), nil
}

// SelectPrompt presents items with type-to-filter fuzzy search
func SelectPrompt(label string, items []string) (int, string, error) {
	prompt := promptui.Select{
		Label:             label,
		Items:             items,
		Size:              min(10, len(items)),
		Searcher:          fuzzySearcher(items),
		StartInSearchMode: len(items) > 10,
	}

	index, result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
			return -1, "", ErrCancelled
		}
		return -1, "", err
	}

	return index, result, nil
}

func fuzzySearcher(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if index < 0 || index >= len(items) {
			return false
		}
		input = strings.TrimSpace(input)
		if input == "" {
			return true
		}
		return fuzzy.MatchNormalizedFold(input, items[index])
	}
}

// Suggest returns up to max candidates that fuzzily resemble name, best
// match first
func Suggest(name string, candidates []string, max int) []string {
	if name == "" || max <= 0 {
		return nil
	}

	ranks := fuzzy.RankFindNormalizedFold(name, candidates)
	// also catch candidates contained in the name ("requests2" -> "requests")
	for i, candidate := range candidates {
		if candidate != "" && !fuzzy.MatchNormalizedFold(name, candidate) &&
			strings.Contains(strings.ToLower(name), strings.ToLower(candidate)) {
			ranks = append(ranks, fuzzy.Rank{
				Source:        name,
				Target:        candidate,
				Distance:      len(name) - len(candidate),
				OriginalIndex: i,
			})
		}
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].Target < ranks[j].Target
	})

	out := make([]string, 0, max)
	for _, r := range ranks {
		if len(out) == max {
			break
		}
		out = append(out, r.Target)
	}
	return out
}

// ConfirmDangerousAction asks for confirmation with a warning
func ConfirmDangerousAction(action string, target string) (bool, error) {
	PrintWarning("You are about to %s: %s", action, target)
	PrintWarning("This action cannot be undone!")
	fmt.Println()

	return ConfirmPrompt(fmt.Sprintf("Are you sure you want to %s", action))
}
