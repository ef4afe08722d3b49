package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	oauth "github.com/giantswarm/multi-oauth"
	"github.com/giantswarm/multi-oauth/providers"
	"github.com/giantswarm/multi-oauth/security"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "oauthctl",
		Short:         "Drive OAuth flows against Google, GitHub, Facebook, Kakao, Naver and X",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "dotenv file to load (repeatable)")
	root.PersistentFlags().StringVar(&a.envPrefix, "env-prefix", a.envPrefix, "prefix of <PREFIX>_<PROVIDER>_<FIELD> credential variables")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "provider request timeout (default 10s)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newProvidersCmd(a),
		newStateCmd(),
		newPKCECmd(),
		newAuthURLCmd(a),
		newExchangeCmd(a),
		newRefreshCmd(a),
		newRevokeCmd(a),
		newUserInfoCmd(a),
	)
	return root
}

// withService builds the Service for the command's provider argument and closes it
// after fn returns.
func withService(a *app, cmd *cobra.Command, provider string, fn func(ctx context.Context, svc *oauth.Service) error) error {
	svc, err := a.newService(cmd.ErrOrStderr(), provider)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close(context.Background()) }()

	return fn(cmd.Context(), svc)
}

func newProvidersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List available and configured providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(a, cmd, "", func(_ context.Context, svc *oauth.Service) error {
				fromEnv := []string{}
				for _, p := range a.envProviders() {
					fromEnv = append(fromEnv, p.Name)
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"available":  svc.AvailableProviders(),
					"registered": svc.RegisteredProviders(),
					"from_env":   fromEnv,
				})
			})
		},
	}
}

func newStateCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Generate a random state and nonce",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := security.GenerateState(n)
			if err != nil {
				return err
			}
			nonce, err := security.GenerateNonce(n)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"state": state, "nonce": nonce})
		},
	}
	cmd.Flags().IntVar(&n, "bytes", security.DefaultRandomLength, "random bytes before encoding")
	return cmd
}

func newPKCECmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pkce",
		Short: "Generate a PKCE verifier and S256 challenge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pkce, err := security.GeneratePKCE()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), pkce)
		},
	}
}

func newAuthURLCmd(a *app) *cobra.Command {
	var (
		opts        providers.AuthURLOptions
		usePKCE     bool
		allowSignup bool
	)
	cmd := &cobra.Command{
		Use:   "auth-url <provider>",
		Short: "Print the authorization URL for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := map[string]string{}

			if opts.State == "" {
				state, err := security.GenerateState(0)
				if err != nil {
					return err
				}
				opts.State = state
			}
			out["state"] = opts.State

			if usePKCE {
				pkce, err := security.GeneratePKCE()
				if err != nil {
					return err
				}
				opts.CodeChallenge = pkce.CodeChallenge
				opts.CodeChallengeMethod = pkce.CodeChallengeMethod
				out["code_verifier"] = pkce.CodeVerifier
			}
			if cmd.Flags().Changed("allow-signup") {
				opts.AllowSignup = providers.BoolPtr(allowSignup)
			}

			return withService(a, cmd, args[0], func(_ context.Context, svc *oauth.Service) error {
				authURL, err := svc.GenerateAuthURL(args[0], opts)
				if err != nil {
					return err
				}
				out["url"] = authURL
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}

	cmd.Flags().StringSliceVar(&opts.Scopes, "scope", nil, "scope to request (repeatable)")
	cmd.Flags().StringVar(&opts.State, "state", "", "state value (generated when empty)")
	cmd.Flags().StringVar(&opts.AccessType, "access-type", "", "Google access_type (online|offline)")
	cmd.Flags().StringVar(&opts.Prompt, "prompt", "", "prompt parameter")
	cmd.Flags().StringVar(&opts.LoginHint, "login-hint", "", "login hint")
	cmd.Flags().StringVar(&opts.Nonce, "nonce", "", "OIDC nonce")
	cmd.Flags().StringVar(&opts.ServiceTerms, "service-terms", "", "Kakao service terms")
	cmd.Flags().BoolVar(&allowSignup, "allow-signup", true, "GitHub allow_signup")
	cmd.Flags().BoolVar(&usePKCE, "pkce", false, "generate a PKCE pair and send its challenge")
	return cmd
}

func newExchangeCmd(a *app) *cobra.Command {
	var params providers.CallbackParams
	cmd := &cobra.Command{
		Use:   "exchange <provider>",
		Short: "Exchange an authorization code for tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(a, cmd, args[0], func(ctx context.Context, svc *oauth.Service) error {
				tok, err := svc.HandleCallback(ctx, args[0], params)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), tok)
			})
		},
	}
	cmd.Flags().StringVar(&params.Code, "code", "", "authorization code from the callback")
	cmd.Flags().StringVar(&params.State, "state", "", "state from the callback")
	cmd.Flags().StringVar(&params.Error, "error", "", "error from the callback")
	cmd.Flags().StringVar(&params.ErrorDescription, "error-description", "", "error_description from the callback")
	cmd.Flags().StringVar(&params.CodeVerifier, "code-verifier", "", "PKCE verifier printed by auth-url --pkce")
	return cmd
}

func newRefreshCmd(a *app) *cobra.Command {
	var opts providers.RefreshOptions
	cmd := &cobra.Command{
		Use:   "refresh <provider>",
		Short: "Refresh an access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.RefreshToken == "" {
				return fmt.Errorf("--refresh-token is required")
			}
			return withService(a, cmd, args[0], func(ctx context.Context, svc *oauth.Service) error {
				tok, err := svc.RefreshToken(ctx, args[0], opts)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), tok)
			})
		},
	}
	cmd.Flags().StringVar(&opts.RefreshToken, "refresh-token", "", "refresh token (Facebook: long-lived access token)")
	return cmd
}

func newRevokeCmd(a *app) *cobra.Command {
	var opts providers.RevokeOptions
	cmd := &cobra.Command{
		Use:   "revoke <provider>",
		Short: "Revoke a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Token == "" {
				return fmt.Errorf("--token is required")
			}
			return withService(a, cmd, args[0], func(ctx context.Context, svc *oauth.Service) error {
				if err := svc.RevokeToken(ctx, args[0], opts); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]bool{"revoked": true})
			})
		},
	}
	cmd.Flags().StringVar(&opts.Token, "token", "", "token to revoke")
	cmd.Flags().StringVar(&opts.TokenTypeHint, "token-type-hint", "", "access_token or refresh_token")
	cmd.Flags().StringVar(&opts.TargetID, "target-id", "", "Kakao user id")
	return cmd
}

func newUserInfoCmd(a *app) *cobra.Command {
	var accessToken string
	cmd := &cobra.Command{
		Use:   "userinfo <provider>",
		Short: "Fetch the user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if accessToken == "" {
				return fmt.Errorf("--access-token is required")
			}
			return withService(a, cmd, args[0], func(ctx context.Context, svc *oauth.Service) error {
				info, err := svc.UserInfo(ctx, args[0], accessToken)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), info)
			})
		},
	}
	cmd.Flags().StringVar(&accessToken, "access-token", "", "access token")
	return cmd
}
