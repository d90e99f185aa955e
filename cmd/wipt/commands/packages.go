package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/wipt/internal/core/domain"
)

func requireProducts(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return domain.ErrNoProducts
	}
	return nil
}

func (c *CLI) newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Rebuild the package cache from the configured repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Update(cmd.Context())
		},
	}
}

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <product[=version]>...",
		Short: "Install products or suites",
		Args:  requireProducts,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Install(cmd.Context(), args, installOptions(cmd))
		},
	}
	addInstallFlags(cmd)
	return cmd
}

func (c *CLI) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product[=version]>...",
		Short: "Remove installed products",
		Args:  requireProducts,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Remove(cmd.Context(), args)
		},
	}
}

func (c *CLI) newUpgradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade [product]...",
		Short: "Upgrade installed products to their stable versions and apply patches",
		Long:  "Upgrade the named products, or every product in the cache when none are named.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Upgrade(cmd.Context(), args, installOptions(cmd))
		},
	}
	addInstallFlags(cmd)
	return cmd
}

func (c *CLI) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [product]...",
		Short: "List known products with their versions",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Show(cmd.OutOrStdout(), args)
		},
	}
}

func (c *CLI) newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <product[=version]>...",
		Short: "Download product packages without installing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return c.app.Download(cmd.Context(), args, dir)
		},
	}
	cmd.Flags().String("dir", ".", "Directory to save packages into")
	return cmd
}
