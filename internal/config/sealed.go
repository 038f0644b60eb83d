package config

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"gocloud.dev/secrets"

	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// SealedPrefix marks a configuration value as base64 ciphertext produced by the secrets keeper.
const SealedPrefix = "sealed:"

// Unseal decrypts every sealed credential in cfg using the keeper at cfg.SecretsKeeperURL.
// It is a no-op when no value carries the sealed prefix.
func Unseal(ctx context.Context, cfg *Config) error {
	fields := []*string{
		&cfg.ShiprocketPassword,
		&cfg.CloudprinterAPIKey,
		&cfg.SMTPPassword,
		&cfg.ShiprocketWebhookToken,
		&cfg.CloudprinterWebhookKey,
	}

	sealed := false
	for _, f := range fields {
		if strings.HasPrefix(*f, SealedPrefix) {
			sealed = true
			break
		}
	}
	if !sealed {
		return nil
	}

	if cfg.SecretsKeeperURL == "" {
		return fmt.Errorf("sealed configuration values require SECRETS_KEEPER_URL")
	}

	keeper, err := secrets.OpenKeeper(ctx, cfg.SecretsKeeperURL)
	if err != nil {
		return fmt.Errorf("failed to open secrets keeper: %w", err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	for _, f := range fields {
		if !strings.HasPrefix(*f, SealedPrefix) {
			continue
		}
		plain, err := unsealValue(ctx, keeper, strings.TrimPrefix(*f, SealedPrefix))
		if err != nil {
			return err
		}
		*f = plain
	}
	return nil
}

func unsealValue(ctx context.Context, keeper *secrets.Keeper, encoded string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed value: %w", err)
	}
	plain, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt sealed value: %w", err)
	}
	return string(plain), nil
}
