package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sawpanic/techrun/internal/config"
)

func configPath(env config.Env, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return env.ConfigPath
}

func runConfigValidate(cmd *cobra.Command, env config.Env, args []string) error {
	path := configPath(env, args)
	if _, err := config.Load(path); err != nil {
		return err
	}
	if path == "" {
		path = "built-in defaults"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration valid: %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, env config.Env, args []string) error {
	cfg, err := config.Load(configPath(env, args))
	if err != nil {
		return err
	}
	out, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
