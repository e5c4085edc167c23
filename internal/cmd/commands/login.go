package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/nhle/bugtriage/internal/cmd/base"
	"github.com/nhle/bugtriage/internal/credential"
	"github.com/nhle/bugtriage/internal/notion"
)

// LoginCommand stores an integration token in the system keyring.
type LoginCommand struct {
	*base.Command

	common         base.Common
	flagTokenStdin bool
	flagNoVerify   bool

	// Stdin is read by --token-stdin. Defaults to os.Stdin.
	Stdin io.Reader
}

func (c *LoginCommand) Synopsis() string {
	return "Store a Notion integration token"
}

func (c *LoginCommand) Help() string {
	return `Usage: bugtriage login [options]

  Prompts for an internal integration secret, checks it against the API
  and stores it in the system keyring under the configured profile.` + c.Flags().Help()
}

func (c *LoginCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet("login")
	c.common.Register(f)
	f.BoolVar(&c.flagTokenStdin, "token-stdin", false, "Read the token from stdin instead of prompting")
	f.BoolVar(&c.flagNoVerify, "no-verify", false, "Store the token without testing it")
	return f
}

func (c *LoginCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := c.LoadConfig(c.common.ConfigPath)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	token, err := c.readToken()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	if !c.flagNoVerify {
		svc, err := notion.New(notion.ConfigFromApp(cfg, token, c.Log))
		if err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Notion.Timeout)
		ok, msg := svc.TestConnection(ctx)
		cancel()
		svc.Close()
		if !ok {
			c.UI.Error("Token rejected: " + msg)
			return exitAuth
		}
	}

	key := credential.TokenKey(cfg.Notion.Profile)
	if err := c.SaveToken(key, token); err != nil {
		c.UI.Error(fmt.Sprintf("error storing token: %v", err))
		return 1
	}

	c.Log.Info("stored notion token", "profile", cfg.Notion.Profile, "key", token.Preview())
	c.UI.Output(fmt.Sprintf("Token %s saved for profile %q", token.Preview(), cfg.Notion.Profile))
	return 0
}

func (c *LoginCommand) readToken() (credential.Secret, error) {
	var raw string
	if c.flagTokenStdin {
		in := c.Stdin
		if in == nil {
			in = os.Stdin
		}
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return credential.Secret{}, fmt.Errorf("reading token: %w", err)
		}
		raw = line
	} else {
		err := huh.NewInput().
			Title("Notion integration secret").
			Description("From notion.so/my-integrations; the database must be shared with it.").
			EchoMode(huh.EchoModePassword).
			Value(&raw).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("token is required")
				}
				return nil
			}).
			Run()
		if err != nil {
			return credential.Secret{}, err
		}
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return credential.Secret{}, errors.New("token is empty")
	}
	return credential.NewSecret(raw), nil
}

// LogoutCommand removes the stored token.
type LogoutCommand struct {
	*base.Command

	common base.Common
}

func (c *LogoutCommand) Synopsis() string {
	return "Remove the stored Notion token"
}

func (c *LogoutCommand) Help() string {
	return `Usage: bugtriage logout [options]

  Deletes the configured profile's token from the system keyring.` + c.Flags().Help()
}

func (c *LogoutCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet("logout")
	c.common.Register(f)
	return f
}

func (c *LogoutCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := c.LoadConfig(c.common.ConfigPath)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	err = c.DeleteToken(credential.TokenKey(cfg.Notion.Profile))
	if err != nil && !errors.Is(err, credential.ErrNotFound) {
		c.UI.Error(fmt.Sprintf("error removing token: %v", err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("Logged out of profile %q", cfg.Notion.Profile))
	return 0
}
