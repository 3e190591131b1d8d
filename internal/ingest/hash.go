package ingest

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent 计算文件完整字节内容的 SHA-256 摘要（小写十六进制）。
// 去重只看内容：文件被移动、改名或以相同内容重新导出都不会被重复计数。
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
