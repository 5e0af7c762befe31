package order

// MergeLines 合并同一本书的重复明细
//
// 规则:
// 1. 按BookID分组,输出顺序为每本书第一次出现的顺序
// 2. 数量相加,单价取该组第一行的单价(不查目录)
// 3. 重新计算小计
//
// 纯函数,不修改入参;对结果再次合并得到相同结果
func MergeLines(lines []Line) []Line {
	merged := make([]Line, 0, len(lines))
	index := make(map[uint]int, len(lines))

	for _, l := range lines {
		if i, ok := index[l.BookID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.BookID] = len(merged)
		merged = append(merged, Line{BookID: l.BookID, Quantity: l.Quantity, Price: l.Price})
	}

	for i := range merged {
		merged[i].recalculate()
	}
	return merged
}
