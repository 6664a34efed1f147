// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// Package clone builds deployable initcode that reproduces a source
// contract's runtime bytecode verbatim on the target chain, without
// replaying its constructor — constructor-set storage is mirrored by the
// storage migration instead, not by re-running EVM init code.
package clone

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/vm"
)

// maxPush2 is the largest length PUSH2 can carry as an operand; EIP-170's
// 24576-byte runtime code cap already sits well under it, so this is the
// binding constraint the stub below depends on.
const maxPush2 = 0xFFFF

// Initcode wraps runtime bytecode in a minimal init sequence that, when
// executed by CREATE/CREATE2, copies the appended runtime bytes into
// memory and returns them as the deployed code:
//
//	PUSH2 <len> PUSH1 <offset> PUSH1 0 CODECOPY
//	PUSH2 <len> PUSH1 0 RETURN
//	<runtime bytes>
//
// offset is the length of the stub itself (14 bytes, fixed by the opcode
// sequence above), so CODECOPY always starts reading right after PUSH1 0
// RETURN.
func Initcode(runtime []byte) ([]byte, error) {
	if len(runtime) > maxPush2 {
		return nil, fmt.Errorf("clone: runtime code length %d exceeds PUSH2 operand range", len(runtime))
	}
	// PUSH2(3) + PUSH1(2) + PUSH1(2) + CODECOPY(1) + PUSH2(3) + PUSH1(2) + RETURN(1).
	const stubLen = 14
	lenBytes := push2Operand(len(runtime))

	stub := []byte{
		byte(vm.PUSH2), lenBytes[0], lenBytes[1],
		byte(vm.PUSH1), byte(stubLen),
		byte(vm.PUSH1), 0x00,
		byte(vm.CODECOPY),
		byte(vm.PUSH2), lenBytes[0], lenBytes[1],
		byte(vm.PUSH1), 0x00,
		byte(vm.RETURN),
	}
	if len(stub) != stubLen {
		return nil, fmt.Errorf("clone: internal error, stub length %d != %d", len(stub), stubLen)
	}
	return append(stub, runtime...), nil
}

func push2Operand(n int) [2]byte {
	return [2]byte{byte(n >> 8), byte(n)}
}
