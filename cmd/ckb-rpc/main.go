// Command ckb-rpc calls a CKB node from the shell and runs a stub node.
//
//	ckb-rpc methods
//	ckb-rpc call getTipBlockNumber
//	ckb-rpc call getBlockByNumber 1024 --debug
//	ckb-rpc tip --interval 5s
//	ckb-rpc serve --config ckb-rpc.yaml
//	ckb-rpc nodes --watch
package main

func main() {
	Execute()
}
