package main

import (
	"github.com/spf13/cobra"

	"Storefront/internal/config"
)

func newRootCmd() *cobra.Command {
	var (
		a          *app
		configFile string
	)

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse products, manage the cart and place orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var files []string
			if configFile != "" {
				files = []string{configFile}
			}
			cfg, err := config.LoadStorefront(files...)
			if err != nil {
				return err
			}
			a, err = newApp(cfg)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")

	get := func() *app { return a }
	root.AddCommand(
		newProductsCmd(get),
		newCategoriesCmd(get),
		newCartCmd(get),
		newLoginCmd(get),
		newRegisterCmd(get),
		newLogoutCmd(get),
		newWhoamiCmd(get),
		newCheckoutCmd(get),
		newOrdersCmd(get),
		newLangCmd(get),
		newTablesCmd(get),
	)
	return root
}
