package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/feedbackportal/portal-client/feedback"
	apperrors "github.com/feedbackportal/portal-client/internal/errors"
	"github.com/feedbackportal/portal-client/internal/utils"
	"github.com/feedbackportal/portal-client/routes"
	"github.com/feedbackportal/portal-client/session"
	"github.com/feedbackportal/portal-client/views/adminboard"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

const maxImageBytes = 5 * 1024 * 1024

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type registerInput struct {
	Name            string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type submitInput struct {
	Text   string `validate:"required"`
	Rating int    `validate:"required,min=1,max=5"`
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "portal",
		Short:         "Client for the feedback portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			figure.NewFigure(a.cfg.GetAppName(), "cybermedium", true).Print()
			fmt.Fprintln(a.out)
			_ = cmd.Help()
		},
	}

	root.AddCommand(
		a.registerCommand(),
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.submitCommand(),
		a.listCommand(),
		a.mineCommand(),
		a.showCommand(),
		a.replyCommand(),
		a.suggestCommand(),
	)
	return root
}

func (a *app) registerCommand() *cobra.Command {
	var in registerInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new portal account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validateInput(in); err != nil {
				return err
			}
			user, err := a.session.Register(cmd.Context(), session.RegisterProfile{
				Name:     in.Name,
				Email:    in.Email,
				Password: in.Password,
			})
			if err != nil {
				return fmt.Errorf("%s", a.session.Err())
			}
			a.printf("Account created for %s <%s>. You can now log in.\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (min 6 characters)")
	cmd.Flags().StringVar(&in.ConfirmPassword, "confirm-password", "", "password confirmation")
	return cmd
}

func (a *app) loginCommand() *cobra.Command {
	var in loginInput
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and start a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validateInput(in); err != nil {
				return err
			}
			user, err := a.session.Login(cmd.Context(), session.Credentials{
				Email:    in.Email,
				Password: in.Password,
			})
			if err != nil {
				return fmt.Errorf("%s", a.session.Err())
			}
			a.printf("Logged in as %s (%s). Landing: %s\n", user.Name, user.Role, a.nav.CurrentPath())
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Initialize()
			a.session.Logout()
			a.printf("Logged out.\n")
			return nil
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Initialize()
			user := a.session.CurrentUser()
			if user == nil {
				a.printf("Not logged in.\n")
				return nil
			}
			a.printf("%s <%s> role=%s id=%s\n", user.Name, user.Email, user.Role, user.ID)
			return nil
		},
	}
}

func (a *app) submitCommand() *cobra.Command {
	var in submitInput
	var imagePath string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit feedback with a star rating and optional image",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(routes.SubmitFeedback, false); err != nil {
				return err
			}
			if err := a.validateInput(in); err != nil {
				return err
			}

			var image *feedback.ImageAttachment
			if imagePath != "" {
				file, err := a.openImage(imagePath)
				if err != nil {
					return err
				}
				defer file.Close()
				image = &feedback.ImageAttachment{Name: filepath.Base(imagePath), Reader: file}
			}

			if _, err := a.feedback.Submit(cmd.Context(), in.Text, in.Rating, image); err != nil {
				return fmt.Errorf("%s", a.feedback.Err())
			}
			a.printf("%s\n", a.feedback.Success())
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Text, "text", "", "feedback text")
	cmd.Flags().IntVar(&in.Rating, "rating", 0, "star rating, 1-5")
	cmd.Flags().StringVar(&imagePath, "image", "", "path to an image attachment (jpeg/png/gif/webp, max 5MB)")
	return cmd
}

func (a *app) listCommand() *cobra.Command {
	var rating int
	var sortBy string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all feedback (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(routes.Admin, true); err != nil {
				return err
			}

			loader, err := adminboard.NewLoader(a.feedback,
				adminboard.WithMaxRetries(a.cfg.GetListRetries()),
				adminboard.WithRetryDelay(a.cfg.GetListRetryDelay()),
			)
			if err != nil {
				return err
			}
			loader.SetFilters(a.listFilters(rating, sortBy))

			if err := loader.Load(cmd.Context()); err != nil {
				return fmt.Errorf("%s", loader.Err())
			}
			a.printFeedbacks(loader.Feedbacks())
			return nil
		},
	}
	cmd.Flags().IntVar(&rating, "rating", 0, "filter by star rating, 1-5")
	cmd.Flags().StringVar(&sortBy, "sort", string(feedback.SortNewest), "sort order: newest or oldest")
	return cmd
}

func (a *app) mineCommand() *cobra.Command {
	var rating int
	var sortBy string
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List your own feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(routes.Dashboard, false); err != nil {
				return err
			}
			user := a.session.CurrentUser()

			filters := a.listFilters(rating, sortBy)
			filters.UserID = user.ID.String()
			records, err := a.feedback.List(cmd.Context(), filters)
			if err != nil {
				return fmt.Errorf("%s", a.feedback.Err())
			}
			a.printFeedbacks(records)
			return nil
		},
	}
	cmd.Flags().IntVar(&rating, "rating", 0, "filter by star rating, 1-5")
	cmd.Flags().StringVar(&sortBy, "sort", string(feedback.SortNewest), "sort order: newest or oldest")
	return cmd
}

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <feedback-id>",
		Short: "Show a single feedback record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(routes.Dashboard, false); err != nil {
				return err
			}
			record, err := a.feedback.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", a.feedback.Err())
			}
			a.printFeedbacks([]feedback.Feedback{*record})
			return nil
		},
	}
}

func (a *app) replyCommand() *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "reply <feedback-id>",
		Short: "Reply to a feedback record (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(routes.Admin, true); err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("text: reply text is required")
			}
			if _, err := a.feedback.Reply(cmd.Context(), args[0], text); err != nil {
				return fmt.Errorf("%s", a.feedback.Err())
			}
			a.printf("%s\n", a.feedback.Success())
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "reply text")
	return cmd
}

func (a *app) suggestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <feedback-id>",
		Short: "Fetch AI reply suggestions for a feedback record (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(routes.Admin, true); err != nil {
				return err
			}
			suggestions, err := a.feedback.Suggestions(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("could not fetch suggestions")
			}
			if len(suggestions) == 0 {
				a.printf("No suggestions available.\n")
				return nil
			}
			for i, suggestion := range suggestions {
				a.printf("%d. %s\n", i+1, suggestion)
			}
			return nil
		},
	}
}

func (a *app) listFilters(rating int, sortBy string) feedback.ListFilters {
	filters := feedback.ListFilters{SortBy: feedback.SortOrder(sortBy)}
	if rating >= 1 && rating <= 5 {
		filters.Rating = utils.Ptr(rating)
	}
	return filters
}

// validateInput runs client-local validation and renders field errors.
// Invalid input never reaches the backend.
func (a *app) validateInput(in any) error {
	err := a.validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !apperrors.As(err, &fieldErrs) {
		return err
	}
	lines := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		lines = append(lines, fmt.Sprintf("%s: failed %q validation", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("invalid input:\n  %s", strings.Join(lines, "\n  "))
}

func (a *app) openImage(path string) (*os.File, error) {
	if !allowedImageExts[strings.ToLower(filepath.Ext(path))] {
		return nil, fmt.Errorf("image: please upload a valid image file (JPEG, PNG, GIF, WEBP)")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}
	if info.Size() > maxImageBytes {
		return nil, fmt.Errorf("image: image size should be less than 5MB")
	}
	return os.Open(path)
}

func (a *app) printFeedbacks(records []feedback.Feedback) {
	if len(records) == 0 {
		a.printf("No feedbacks found.\n")
		return
	}
	a.printf("Showing %d feedback(s)\n", len(records))
	for _, record := range records {
		author := "unknown"
		if record.Author != nil {
			author = record.Author.Name
		}
		a.printf("\n[%s] %d/5 by %s on %s\n", record.ID, record.Rating, author, record.CreatedAt.Format("2006-01-02 15:04"))
		a.printf("  %s\n", record.Text)
		if record.ImageURL != "" {
			a.printf("  image: %s\n", record.ImageURL)
		}
		for _, reply := range record.Replies {
			name := "admin"
			if reply.Admin != nil {
				name = reply.Admin.Name
			}
			a.printf("  ↳ %s (Admin), %s: %s\n", name, reply.CreatedAt.Format("2006-01-02 15:04"), reply.Text)
		}
	}
}
