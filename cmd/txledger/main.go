// txledger 交易账本服务与离线检查工具
package main

func main() {
	Execute()
}
