package smartaccount

import (
	"crypto/sha256"
	"fmt"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// deriveContractID computes the address the factory will deploy to for the
// given salt, so the wallet address is known before the deployment lands.
func deriveContractID(factoryContract string, salt [32]byte, networkPassphrase string) (string, error) {
	factory, err := contractHash(factoryContract)
	if err != nil {
		return "", err
	}

	networkID := xdr.Hash(sha256.Sum256([]byte(networkPassphrase)))
	preimage := xdr.HashIdPreimage{
		Type: xdr.EnvelopeTypeEnvelopeTypeContractId,
		ContractId: &xdr.HashIdPreimageContractId{
			NetworkId: networkID,
			ContractIdPreimage: xdr.ContractIdPreimage{
				Type: xdr.ContractIdPreimageTypeContractIdPreimageFromAddress,
				FromAddress: &xdr.ContractIdPreimageFromAddress{
					Address: xdr.ScAddress{
						Type:       xdr.ScAddressTypeScAddressTypeContract,
						ContractId: &factory,
					},
					Salt: xdr.Uint256(salt),
				},
			},
		},
	}

	raw, err := preimage.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("marshal contract id preimage: %w", err)
	}

	sum := sha256.Sum256(raw)
	return strkey.Encode(strkey.VersionByteContract, sum[:])
}

func contractHash(address string) (xdr.Hash, error) {
	var hash xdr.Hash

	raw, err := strkey.Decode(strkey.VersionByteContract, address)
	if err != nil {
		return hash, fmt.Errorf("decode contract address: %w", err)
	}

	copy(hash[:], raw)
	return hash, nil
}

// scAddress accepts both classical account ids and contract addresses.
func scAddress(address string) (xdr.ScAddress, error) {
	if strkey.IsValidContractAddress(address) {
		hash, err := contractHash(address)
		if err != nil {
			return xdr.ScAddress{}, err
		}

		return xdr.ScAddress{
			Type:       xdr.ScAddressTypeScAddressTypeContract,
			ContractId: &hash,
		}, nil
	}

	accountID, err := xdr.AddressToAccountId(address)
	if err != nil {
		return xdr.ScAddress{}, fmt.Errorf("decode account address: %w", err)
	}

	return xdr.ScAddress{
		Type:      xdr.ScAddressTypeScAddressTypeAccount,
		AccountId: &accountID,
	}, nil
}

func bytesVal(b []byte) xdr.ScVal {
	bytes := xdr.ScBytes(b)
	return xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &bytes}
}

func addressVal(addr xdr.ScAddress) xdr.ScVal {
	return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &addr}
}

func i128Val(v int64) xdr.ScVal {
	parts := xdr.Int128Parts{Hi: 0, Lo: xdr.Uint64(v)}
	if v < 0 {
		parts.Hi = -1
	}

	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}
}
