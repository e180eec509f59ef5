package app

// Command は単一バイナリのサブコマンドを表す。
type Command string

const (
	// CommandServe はニュースAPIサーバーとして起動する。
	CommandServe Command = "serve"
	// CommandWorker は取り込み・クリーンアップワーカーとして起動する。
	CommandWorker Command = "worker"
	// CommandMigrate は未適用のスキーママイグレーションを適用して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は稼働中サーバーの/healthを叩いて終了コードで結果を返す。
	// distrolessイメージにはシェルがないため、DockerのHEALTHCHECKはこれを使う。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand は先頭の引数をサブコマンドとして解釈する。
// 引数なし・未知のサブコマンドはserveとして扱う。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch Command(args[0]) {
	case CommandWorker, CommandMigrate, CommandHealthcheck:
		return Command(args[0])
	default:
		return CommandServe
	}
}
