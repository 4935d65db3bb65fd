package cli

import (
	"fmt"

	"github.com/felixgeelhaar/sshscp/internal/infrastructure/audit"
	"github.com/felixgeelhaar/sshscp/internal/infrastructure/config"
	"github.com/felixgeelhaar/sshscp/internal/infrastructure/objectstore"
	"github.com/felixgeelhaar/sshscp/pkg/keys"
	"github.com/spf13/cobra"
)

var (
	keygenBits   int
	keygenSave   bool
	keygenUpload bool
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an RSA key pair",
	Long: `Generate an RSA key pair. The private key is PEM encoded (PKCS#1) and the
public key is the base64 of its PKIX DER encoding.

Without --save both halves are printed. With --save they are written to
.sshscp/<id>.pem and .sshscp/<id>.pub.b64. --upload also copies them to the
bucket configured by the SSHSCP_S3_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		persist := keygenSave || keygenUpload

		ws, err := loadWorkspace(cmd)
		if err != nil {
			return err
		}
		bits := keygenBits
		if bits == 0 {
			bits = ws.Config.KeyBits
		}

		kp, err := keys.NewRSAKey(bits)
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		fingerprint, err := kp.Fingerprint()
		if err != nil {
			return err
		}

		if !persist {
			fmt.Fprint(out, kp.PrivateKeyPEM)
			fmt.Fprintln(out, kp.PublicKeyBase64)
			return nil
		}

		privPath, err := ws.Repo.SaveKeyPair(kp)
		if err != nil {
			return MapError(err)
		}
		ws.Record(audit.EventKeyGenerated, "", true, map[string]string{
			"key_id":      kp.ID,
			"bits":        fmt.Sprint(kp.Bits()),
			"fingerprint": fingerprint,
		})
		fmt.Fprintf(out, "Key ID:      %s\n", kp.ID)
		fmt.Fprintf(out, "Fingerprint: %s\n", fingerprint)
		fmt.Fprintf(out, "Private key: %s\n", privPath)

		if !keygenUpload {
			return nil
		}

		osCfg, err := config.LoadObjectStoreConfig()
		if err != nil {
			return err
		}
		if !osCfg.Enabled() {
			return NewCLIError("key backup is not configured", "Set SSHSCP_S3_ENDPOINT, SSHSCP_S3_ACCESS_KEY, SSHSCP_S3_SECRET_KEY and SSHSCP_S3_BUCKET", nil)
		}
		store, err := objectstore.NewMinIO(cmd.Context(), osCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to object store: %w", err)
		}
		names, err := objectstore.UploadKeyPair(cmd.Context(), store, osCfg.Prefix, kp)
		ws.Record(audit.EventKeyUploaded, "", err == nil, map[string]string{
			"key_id": kp.ID,
			"bucket": osCfg.Bucket,
		})
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintf(out, "Uploaded:    s3://%s/%s\n", osCfg.Bucket, n)
		}
		return nil
	},
}

func init() {
	keygenCmd.Flags().IntVar(&keygenBits, "bits", 0, "Key size in bits (default from config.yaml)")
	keygenCmd.Flags().BoolVar(&keygenSave, "save", false, "Write the key pair into .sshscp/")
	keygenCmd.Flags().BoolVar(&keygenUpload, "upload", false, "Save and back up the key pair to the configured bucket")
	RootCmd.AddCommand(keygenCmd)
}
