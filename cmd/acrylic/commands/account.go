package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/acrylic/tracker/internal/infrastructure/server"
)

func newLoginCommand(opts *rootOptions) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a sealed Canvas access token",
		Long:  "Seal the Canvas access token with security.secret_key and save it in the store. Reads the token from stdin when --token is not given.",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&token, "token", "", "Canvas access token")

	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		if token == "" {
			read, err := promptToken(cmd)
			if err != nil {
				return err
			}
			token = read
		}

		if err := a.auth.SaveCanvasToken(ctx, token); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token saved")
		return nil
	})
	return cmd
}

var readPasswordFunc = term.ReadPassword // mockable

// promptToken reads the token without echo on a terminal, or as a plain
// line when stdin is piped.
func promptToken(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Canvas access token: ")

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := readPasswordFunc(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored Canvas access token",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app) error {
			return a.auth.ForgetCanvasToken(ctx)
		}),
	}
}

func newTokenCommand(opts *rootOptions) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "API token commands",
	}

	var (
		surface string
		ttl     time.Duration
	)
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an API token for the app or widget surface",
		Args:  cobra.NoArgs,
	}
	issueCmd.Flags().StringVar(&surface, "surface", server.SurfaceApp, "surface the token is for (app or widget)")
	issueCmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default jwt.expires_in)")

	issueCmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		if surface != server.SurfaceApp && surface != server.SurfaceWidget {
			return fmt.Errorf("unknown surface %q", surface)
		}
		if a.config.JWT.UsesDefaultJWTSecret() {
			a.logger.Warn("Issuing a token signed with the default JWT secret; set JWT_SECRET")
		}

		token, err := a.auth.IssueToken(surface, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(issueCmd.OutOrStdout(), token)
		return nil
	})

	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}

func newProfileCommand(opts *rootOptions) *cobra.Command {
	var imagePath string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Refresh the Canvas profile and its picture",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&imagePath, "save-image", "", "also write the profile picture to this file")

	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		profile, err := a.profile.Refresh(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s", profile.Name)
		if profile.PrimaryEmail != "" {
			fmt.Fprintf(out, " <%s>", profile.PrimaryEmail)
		}
		fmt.Fprintln(out)

		if imagePath == "" {
			return nil
		}
		image, err := a.profile.Image(ctx)
		if err != nil {
			return err
		}
		if image == nil {
			return fmt.Errorf("no profile picture stored")
		}
		return os.WriteFile(imagePath, image, 0o644)
	})
	return cmd
}
