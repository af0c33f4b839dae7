// Package prompt holds the huh forms used by the sign-in and compose
// commands.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/nhle/gitjot/internal/auth"
	"github.com/nhle/gitjot/internal/github"
)

const formWidth = 72

// validateRequired returns a validator that rejects blank input.
func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateRepo(s string) error {
	_, _, err := auth.ParseRepo(s)
	return err
}

// PAT builds the token + repository form. Answers land in in.Token and
// in.Repo.
func PAT(in *auth.Input) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Personal Access Token").
				Description("Fine-grained token with Contents read/write on the notes repository").
				EchoMode(huh.EchoModePassword).
				Value(&in.Token).
				Validate(validateRequired("Token")),
			huh.NewInput().
				Title("Repository").
				Description("owner/repo or the full GitHub URL").
				Placeholder("octocat/notes").
				Value(&in.Repo).
				Validate(validateRepo),
		),
	).WithWidth(formWidth)
}

// repoOptions lists repositories by full name; the option value is the
// index into repos.
func repoOptions(repos []github.Repository) []huh.Option[int] {
	opts := make([]huh.Option[int], 0, len(repos))
	for i, r := range repos {
		label := r.FullName
		if r.Private {
			label += " (private)"
		}
		opts = append(opts, huh.NewOption(label, i))
	}
	return opts
}

// SelectRepoForm builds the repository picker; the chosen index lands in
// choice.
func SelectRepoForm(repos []github.Repository, choice *int) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Notes repository").
				Description("Notes are written to inbox/ in this repository").
				Options(repoOptions(repos)...).
				Value(choice),
		),
	).WithWidth(formWidth)
}

// SelectRepo asks the user to pick one of repos. It fits
// auth.Input.SelectRepo.
func SelectRepo(repos []github.Repository) (github.Repository, error) {
	if len(repos) == 0 {
		return github.Repository{}, auth.ErrNoRepoSelected
	}
	if len(repos) == 1 {
		return repos[0], nil
	}

	var choice int
	if err := SelectRepoForm(repos, &choice).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return github.Repository{}, auth.ErrNoRepoSelected
		}
		return github.Repository{}, err
	}
	return repos[choice], nil
}

// Compose builds the multi-line note editor. topic, when set, is shown
// above the editor.
func Compose(text *string, topic string) *huh.Form {
	field := huh.NewText().
		Title("New note").
		Placeholder("Write something...").
		CharLimit(0).
		Lines(8).
		Value(text).
		Validate(validateRequired("Note"))
	if topic != "" {
		field = field.Description("Topic: " + topic)
	}
	return huh.NewForm(huh.NewGroup(field)).WithWidth(formWidth)
}

// ConfirmWipe builds the sign-out confirmation asking whether local notes
// and history should be erased too.
func ConfirmWipe(pending int, wipe *bool) *huh.Form {
	desc := "The submission history will be erased."
	if pending > 0 {
		desc = fmt.Sprintf("%d unsent note(s) and the submission history will be erased.", pending)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Also delete local data?").
				Description(desc).
				Affirmative("Delete").
				Negative("Keep").
				Value(wipe),
		),
	).WithWidth(formWidth)
}
