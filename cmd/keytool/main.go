// keytool generates the registrar master key and custodial signing keys sealed under it.
//
//	keytool -gen-master
//	REGISTRAR_MASTER_KEY=... keytool -new-signer
//	REGISTRAR_MASTER_KEY=... keytool -seal 0x<hex private key>
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/peyroll/registrar/pkg/config"
	"github.com/peyroll/registrar/pkg/keys"
)

var (
	genMaster    = flag.Bool("gen-master", false, "Generate a base64 master key")
	newSigner    = flag.Bool("new-signer", false, "Generate a signing key and print it sealed under the master key")
	seal         = flag.String("seal", "", "Seal an existing hex private key under the master key")
	masterKeyEnv = flag.String("master-key-env", "REGISTRAR_MASTER_KEY", "Env var holding the base64 master key")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "keytool: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	switch {
	case *genMaster:
		key, err := keys.GenerateMasterKey()
		if err != nil {
			return err
		}
		fmt.Println(keys.MasterKeyToBase64(key))
		return nil

	case *newSigner:
		cipher, err := loadCipher()
		if err != nil {
			return err
		}
		raw, addr, err := keys.GenerateSignerKey()
		if err != nil {
			return err
		}
		return printSealed(cipher, raw, addr.Hex())

	case *seal != "":
		cipher, err := loadCipher()
		if err != nil {
			return err
		}
		raw, err := hexutil.Decode(ensure0x(*seal))
		if err != nil {
			return fmt.Errorf("invalid private key hex: %w", err)
		}
		pk, err := crypto.ToECDSA(raw)
		if err != nil {
			return fmt.Errorf("invalid secp256k1 key: %w", err)
		}
		return printSealed(cipher, raw, crypto.PubkeyToAddress(pk.PublicKey).Hex())

	default:
		flag.Usage()
		return fmt.Errorf("no command given")
	}
}

func loadCipher() (*keys.MasterKeyCipher, error) {
	encoded, err := config.Secret(*masterKeyEnv)
	if err != nil {
		return nil, err
	}
	master, err := keys.MasterKeyFromBase64(encoded)
	if err != nil {
		return nil, err
	}
	return keys.NewMasterKeyCipher(master)
}

func printSealed(cipher *keys.MasterKeyCipher, raw []byte, address string) error {
	sealed, err := cipher.Encrypt(raw)
	if err != nil {
		return err
	}
	fmt.Printf("address: %s\nencrypted_key: %s\n", address, sealed)
	return nil
}

func ensure0x(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}
