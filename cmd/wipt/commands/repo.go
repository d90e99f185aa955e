package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/wipt/internal/adapters/manifest"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Author repository documents",
	}
	cmd.AddCommand(c.newRepoCreateCmd())
	cmd.AddCommand(c.newRepoAddPackageCmd())
	return cmd
}

func (c *CLI) newRepoCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <file> <maintainer> [support-url]",
		Short: "Create an empty repository document",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(_ *cobra.Command, args []string) error {
			supportURL := ""
			if len(args) == 3 {
				supportURL = args[2]
			}
			return c.app.RepoCreate(args[0], args[1], supportURL)
		},
	}
}

func (c *CLI) newRepoAddPackageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-package <file>",
		Short: "Add a package to a repository document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			name, _ := flags.GetString("name")
			upgradeCode, _ := flags.GetString("upgrade-code")
			productCode, _ := flags.GetString("product-code")
			version, _ := flags.GetString("package-version")
			url, _ := flags.GetString("url")
			publisher, _ := flags.GetString("publisher")
			supportURL, _ := flags.GetString("support-url")
			makeStable, _ := flags.GetBool("make-stable")

			upgrade, err := domain.ParseCode(upgradeCode)
			if err != nil {
				return zerr.With(err, "flag", "upgrade-code")
			}
			product, err := domain.ParseCode(productCode)
			if err != nil {
				return zerr.With(err, "flag", "product-code")
			}

			return c.app.RepoAddPackage(args[0], manifest.PackageInfo{
				ProductName: name,
				UpgradeCode: upgrade,
				Publisher:   publisher,
				SupportURL:  supportURL,
				Version:     version,
				ProductCode: product,
				URL:         url,
			}, makeStable)
		},
	}

	cmd.Flags().String("name", "", "Product name")
	cmd.Flags().String("upgrade-code", "", "Product upgrade code")
	cmd.Flags().String("product-code", "", "Package product code")
	cmd.Flags().String("package-version", "", "Package version")
	cmd.Flags().String("url", "", "Package URL")
	cmd.Flags().String("publisher", "", "Product publisher")
	cmd.Flags().String("support-url", "", "Product support URL")
	cmd.Flags().Bool("make-stable", false, "Make this package the stable version of an existing product")
	for _, name := range []string{"name", "upgrade-code", "product-code", "package-version", "url"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
