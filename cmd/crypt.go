package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iyuangang/sql-batch-runner/internal/config"
)

var encryptURL string

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt a database URL for storage in the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if encryptURL == "" {
			return fmt.Errorf("provide a URL to encrypt (-u)")
		}
		crypto, err := config.NewCrypto()
		if err != nil {
			return fmt.Errorf("init crypto: %w", err)
		}
		encrypted, err := crypto.Encrypt(encryptURL)
		if err != nil {
			return fmt.Errorf("encrypt failed: %w", err)
		}
		fmt.Printf("Encrypted URL: %s\n", encrypted)
		fmt.Println(`Store it as "database_url" with "encrypted": true in the config file.`)
		return nil
	},
}

var decryptURL string

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt an encrypted database URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		if decryptURL == "" {
			return fmt.Errorf("provide an encrypted URL to decrypt (-u)")
		}
		crypto, err := config.NewCrypto()
		if err != nil {
			return fmt.Errorf("init crypto: %w", err)
		}
		decrypted, err := crypto.Decrypt(decryptURL)
		if err != nil {
			return fmt.Errorf("decrypt failed: %w", err)
		}
		fmt.Printf("Decrypted URL: %s\n", decrypted)
		return nil
	},
}

func init() {
	encryptCmd.Flags().StringVarP(&encryptURL, "url", "u", "", "database URL to encrypt")
	decryptCmd.Flags().StringVarP(&decryptURL, "url", "u", "", "encrypted database URL")
}
