package core

// Item 是推荐链路中的统一承载结构：商品 ID、综合分数、分项信号、元信息、标签。
// Features 记录各信号加权后的分项贡献（image / catbrand / history / user），之和等于 Score，用于 explain；
// Meta 在元数据拼接（postprocess.join）后承载商品记录字段；Score 用于排序决策。
type Item struct {
	ID       string
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// MetaString 读取字符串类型的 Meta 字段，不存在或类型不符时返回空串。
func (it *Item) MetaString(key string) string {
	if it == nil || it.Meta == nil {
		return ""
	}
	s, _ := it.Meta[key].(string)
	return s
}

// IDs 按顺序提取 items 的 ID，跳过 nil。
func IDs(items []*Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, it.ID)
	}
	return out
}
