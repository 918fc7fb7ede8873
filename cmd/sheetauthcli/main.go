package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/cosmocode/sheetauth"
	"github.com/cosmocode/sheetauth/cmd/sheetauth/config"
	"github.com/cosmocode/sheetauth/internal/version"
	"github.com/cosmocode/sheetauth/sheets"
	"github.com/cosmocode/sheetauth/storage"
)

var rootCmd = &cobra.Command{
	Use:     "sheetauthcli",
	Short:   "sheetauthcli manages the accounts in your auth sheet",
	Long:    "sheetauthcli manages the accounts in your auth sheet",
	Version: version.VERSION,
}

var configFile string
var directory *sheetauth.Directory
var slotStore storage.SlotStore

func loadDirectory(cmd *cobra.Command, args []string) error {
	config.Load(configFile)
	c := config.Get()

	var err error
	slotStore, err = storage.LoadSlotStore(c.Cache)
	if err != nil {
		return err
	}
	gateway := sheets.NewGateway(cmd.Context(), c.Sheets)
	cache := storage.NewCache(
		gateway, slotStore,
		storage.WithTTL(c.Cache.TTL.Duration()),
		storage.WithSchemaTTL(c.Cache.SchemaTTL.Duration()),
	)
	directory = sheetauth.NewDirectory(gateway, cache, sheetauth.Options{DefaultGroup: c.Directory.DefaultGroup})
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "the config file to use")
	err := rootCmd.Execute()
	if slotStore != nil {
		slotStore.Close()
	}
	if err != nil {
		log.Fatal(err)
	}
}
