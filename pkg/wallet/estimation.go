package wallet

// ScriptType is the standard type of an input or output script.
type ScriptType int

const (
	P2PKH ScriptType = iota
	P2SH_P2WPKH
	P2WPKH
	P2TR
)

var (
	scriptSigSizeByScriptType = map[ScriptType]int{
		P2PKH:       108, // len + opcode + sig + opcode + pubkey
		P2SH_P2WPKH: 23,  // len + p2wpkh script
		P2WPKH:      1,   // no scriptsig, still len is serialized
		P2TR:        1,
	}
	scriptPubKeySizeByScriptType = map[ScriptType]int{
		P2PKH:       26, // len + opcodes (3) + hash(pubkey) + opcodes (2)
		P2SH_P2WPKH: 24, // len + opcodes (2) + hash(script) + opcode
		P2WPKH:      23, // len + opcodes (2) + hash(pubkey)
		P2TR:        35, // len + opcodes (2) + xonly pubkey
	}
	witnessSizeByScriptType = map[ScriptType]int{
		// len + witness[sig,pubkey] + no issuance proof + no token proof + no pegin
		P2SH_P2WPKH: 1 + 107 + 1 + 1 + 1,
		P2WPKH:      1 + 107 + 1 + 1 + 1,
		// len + witness[schnorr sig] + no issuance proof + no token proof + no pegin
		P2TR: 1 + 66 + 1 + 1 + 1,
	}
)

// EstimateLiquidTxSize estimates the virtual size of a confidential Liquid
// transaction spending the given inputs to the given outputs, plus the
// explicit fee output.
func EstimateLiquidTxSize(ins, outs []ScriptType) int {
	baseSize := liquidTxBaseSize(ins, outs)
	totalSize := baseSize + liquidTxWitnessSize(ins, outs)

	weight := baseSize*3 + totalSize
	return (weight + 3) / 4
}

func liquidTxBaseSize(ins, outs []ScriptType) int {
	// hash + index + sequence
	inBaseSize := 40
	insSize := 0
	for _, scriptType := range ins {
		insSize += inBaseSize + scriptSigSizeByScriptType[scriptType]
	}

	// asset + value + nonce commitments
	outBaseSize := 33 + 33 + 33
	outsSize := 0
	for _, scriptType := range outs {
		outsSize += outBaseSize + scriptPubKeySizeByScriptType[scriptType]
	}
	// asset + explicit value + empty script + empty nonce of the fee output
	outsSize += 33 + 9 + 1 + 1

	return 9 +
		varIntSerializeSize(uint64(len(ins))) +
		varIntSerializeSize(uint64(len(outs)+1)) +
		insSize + outsSize
}

func liquidTxWitnessSize(ins, outs []ScriptType) int {
	insSize := 0
	for _, scriptType := range ins {
		insSize += witnessSizeByScriptType[scriptType]
	}

	// size(range proof) + proof + size(surjection proof) + proof
	outsSize := (3 + 4174 + 1 + 131) * len(outs)
	// empty proofs of the fee output
	outsSize += 1 + 1

	return insSize + outsSize
}

func varIntSerializeSize(val uint64) int {
	switch {
	case val < 0xfd:
		return 1
	case val <= 0xffff:
		return 3
	case val <= 0xffffffff:
		return 5
	default:
		return 9
	}
}
