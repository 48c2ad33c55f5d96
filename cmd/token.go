package cmd

import (
	"fmt"

	internalApp "github.com/haierkeys/fast-note-kb-service/internal/app"
	pkgapp "github.com/haierkeys/fast-note-kb-service/pkg/app"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type tokenFlags struct {
	config   string
	uid      int64
	nickname string
	email    string
}

func init() {
	f := new(tokenFlags)

	var tokenCommand = &cobra.Command{
		Use:   "token --uid 1 [-c config_file]",
		Short: "Mint an auth token signed with the configured key // 生成开发用 Token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.uid <= 0 {
				return fmt.Errorf("--uid must be positive")
			}
			if f.config == "" {
				f.config = findConfig()
			}
			if f.config == "" {
				return fmt.Errorf("config file not found, pass -c")
			}
			cfg, _, err := internalApp.LoadConfig(f.config)
			if err != nil {
				return err
			}

			tm := pkgapp.NewTokenManager(pkgapp.TokenConfig{
				SecretKey: cfg.Security.AuthTokenKey,
				Expiry:    cfg.GetTokenExpiry(),
				Issuer:    pkgapp.DefaultTokenIssuer,
			})
			token, err := tm.Generate(f.uid, f.nickname, f.email)
			if err != nil {
				return err
			}
			bootstrapLogger.Info("token generated", zap.Int64("uid", f.uid), zap.Duration("expiry", cfg.GetTokenExpiry()))
			fmt.Println(token)
			return nil
		},
	}

	rootCmd.AddCommand(tokenCommand)
	fs := tokenCommand.Flags()
	fs.StringVarP(&f.config, "config", "c", "", "config file")
	fs.Int64Var(&f.uid, "uid", 0, "user id")
	fs.StringVar(&f.nickname, "nickname", "", "nickname claim")
	fs.StringVar(&f.email, "email", "", "email claim")
}
