package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"image-skeleton/internal/config"
)

// confCommand prints the effective configuration, usable as a base config file
func confCommand(v *viper.Viper, configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "conf",
		Short: "Print loaded config variables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(v, *configFile)
			if err != nil {
				return err
			}

			bs, err := yaml.Marshal(c)
			if err != nil {
				return fmt.Errorf("unable to marshal config to YAML: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(bs)
			return err
		},
	}
}
