package embedding

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/rushteam/homerec/core"
)

// 支持的向量文件格式
const (
	FormatNpy     = "npy"
	FormatParquet = "parquet"
)

// Source 描述向量文件的位置。
// npy 格式需要 EmbeddingsPath + IDsPath 两个文件；parquet 格式只需要 EmbeddingsPath（含 id、vector 两列）。
type Source struct {
	Format         string `koanf:"format"`
	EmbeddingsPath string `koanf:"embeddings_path"`
	IDsPath        string `koanf:"ids_path"`
}

// Load 按 Source 加载 Store。文件缺失返回 UNAVAILABLE，内容不合法返回 INVALID_INPUT；
// 调用方应将任何错误视为启动失败，不得降级为空 Store。
func Load(src Source) (*Store, error) {
	format := strings.ToLower(src.Format)
	if format == "" {
		format = detectFormat(src.EmbeddingsPath)
	}
	switch format {
	case FormatNpy:
		return LoadNpy(src.EmbeddingsPath, src.IDsPath)
	case FormatParquet:
		return LoadParquet(src.EmbeddingsPath)
	default:
		return nil, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeNotSupported,
			fmt.Sprintf("embedding: unsupported format %q", src.Format))
	}
}

func detectFormat(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".parquet") {
		return FormatParquet
	}
	return FormatNpy
}

// LoadNpy 加载离线批处理产出的 product_embeddings.npy 与 product_ids.npy。
func LoadNpy(embeddingsPath, idsPath string) (*Store, error) {
	if err := requireFiles(embeddingsPath, idsPath); err != nil {
		return nil, err
	}

	embArr, err := readNpyFile(embeddingsPath)
	if err != nil {
		return nil, err
	}
	rows, dim, data, err := embArr.matrix()
	if err != nil {
		return nil, invalid(embeddingsPath, err)
	}

	idArr, err := readNpyFile(idsPath)
	if err != nil {
		return nil, err
	}
	ids, err := idArr.strings()
	if err != nil {
		return nil, invalid(idsPath, err)
	}
	if len(ids) != rows {
		return nil, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeInvalidInput,
			fmt.Sprintf("embedding: %d ids but %d embedding rows", len(ids), rows))
	}
	return New(ids, dim, data)
}

func readNpyFile(path string) (*npyArray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, missing(err)
	}
	defer f.Close()

	arr, err := readNpy(f)
	if err != nil {
		return nil, invalid(path, err)
	}
	return arr, nil
}

func requireFiles(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			return core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeUnavailable,
				"embedding: embeddings or ids file not configured")
		}
		if _, err := os.Stat(p); err != nil {
			return missing(err)
		}
	}
	return nil
}

func missing(err error) error {
	msg := "embedding: cannot open embeddings or ids file"
	if errors.Is(err, fs.ErrNotExist) {
		msg = "embedding: embeddings or ids file not found"
	}
	return core.WrapDomainError(core.ModuleEmbedding, core.ErrorCodeUnavailable, msg, err)
}

func invalid(path string, err error) error {
	return core.WrapDomainError(core.ModuleEmbedding, core.ErrorCodeInvalidInput, "embedding: invalid file "+path, err)
}
