package embedding

import (
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/rushteam/homerec/core"
)

// Row 是 Parquet 向量文件中的一行。
type Row struct {
	ID     string    `parquet:"id"`
	Vector []float32 `parquet:"vector"`
}

// LoadParquet 加载 id + vector 两列的 Parquet 向量文件，所有向量维度必须一致。
func LoadParquet(path string) (*Store, error) {
	if err := requireFiles(path); err != nil {
		return nil, err
	}

	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, invalid(path, err)
	}
	if len(rows) == 0 {
		return nil, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeInvalidInput, "embedding: parquet file has no rows")
	}

	dim := len(rows[0].Vector)
	ids := make([]string, len(rows))
	data := make([]float32, 0, len(rows)*dim)
	for i, r := range rows {
		if len(r.Vector) != dim {
			return nil, core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeInvalidInput,
				fmt.Sprintf("embedding: row %d (%s) has dimension %d, want %d", i, r.ID, len(r.Vector), dim))
		}
		ids[i] = r.ID
		data = append(data, r.Vector...)
	}
	return New(ids, dim, data)
}

// WriteParquet 将 Store 导出为 Parquet 向量文件（用于格式转换与测试数据准备）。
func WriteParquet(path string, s *Store) error {
	rows := make([]Row, s.Len())
	for i := range rows {
		vec, _ := s.Vector(i)
		rows[i] = Row{ID: s.ids[i], Vector: vec}
	}
	if err := parquet.WriteFile(path, rows, parquet.Compression(&parquet.Zstd)); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}
