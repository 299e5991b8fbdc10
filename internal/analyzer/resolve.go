package analyzer

import (
	"math"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"prophet/internal/boundedcontext"
	"prophet/internal/model"
)

// minShapeScore 字段形状匹配的最低得分
const minShapeScore = 0.5

// canonicalEntity 一个规范实体，以及它在各服务中出现过的本地名和字段
type canonicalEntity struct {
	entity  model.Entity
	aliases map[string]struct{}
	shape   map[string]struct{}
}

func (c *canonicalEntity) hasAlias(name string) bool {
	_, ok := c.aliases[name]
	return ok
}

// shapeScore 字段集合的 Jaccard 相似度，字段按 名称:类型 比较，忽略大小写
func (c *canonicalEntity) shapeScore(e model.Entity) float64 {
	local := fieldShape(e.Fields)
	if len(local) == 0 || len(c.shape) == 0 {
		return 0
	}

	inter := 0
	for k := range local {
		if _, ok := c.shape[k]; ok {
			inter++
		}
	}
	union := len(local) + len(c.shape) - inter
	return float64(inter) / float64(union)
}

func fieldShape(fields []model.Field) map[string]struct{} {
	shape := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		shape[shapeKey(f.Name, f.Type)] = struct{}{}
	}
	return shape
}

func shapeKey(name, ty string) string {
	return strings.ToLower(name) + ":" + strings.ToLower(ty)
}

// catalog 规范实体目录，按全名去重，先到先得
type catalog struct {
	entries []*canonicalEntity
	byName  map[string]*canonicalEntity
}

func newCatalog() *catalog {
	return &catalog{byName: make(map[string]*canonicalEntity)}
}

func (c *catalog) add(name string, entity model.Entity) *canonicalEntity {
	if ce, ok := c.byName[name]; ok {
		return ce
	}
	ce := &canonicalEntity{
		entity:  entity,
		aliases: make(map[string]struct{}),
		shape:   make(map[string]struct{}),
	}
	c.entries = append(c.entries, ce)
	c.byName[name] = ce
	return ce
}

// mergedCatalog 由限界上下文服务的响应构造目录
func mergedCatalog(merged []boundedcontext.MergedEntity) *catalog {
	c := newCatalog()
	for _, m := range merged {
		ce := c.add(m.FullName(), m.Entity())
		ce.aliases[m.LocalName()] = struct{}{}
		for _, f := range m.Fields {
			ce.shape[shapeKey(f.Name.Name, f.Type)] = struct{}{}
		}
	}
	return c
}

// localCatalog 离线模式：本地实体按名称去重后直接作为规范实体
func localCatalog(entities []model.Entity) *catalog {
	c := newCatalog()
	for _, e := range entities {
		ce := c.add(e.Name, e)
		ce.aliases[e.Name] = struct{}{}
		for k := range fieldShape(e.Fields) {
			ce.shape[k] = struct{}{}
		}
	}
	return c
}

// Entities 规范实体，保持首次出现的顺序
func (c *catalog) Entities() []model.Entity {
	out := make([]model.Entity, 0, len(c.entries))
	for _, ce := range c.entries {
		out = append(out, ce.entity)
	}
	return out
}

// Resolve 把服务本地实体映射到规范实体名。
// 本地名唯一命中时直接采用；多个命中或没有命中时按字段形状打分，
// 同分再比较名称相似度；都不匹配时保留本地名。
func (c *catalog) Resolve(e model.Entity) string {
	var candidates []*canonicalEntity
	for _, ce := range c.entries {
		if ce.hasAlias(e.Name) {
			candidates = append(candidates, ce)
		}
	}
	if len(candidates) == 1 {
		return candidates[0].entity.Name
	}

	pool := candidates
	if len(pool) == 0 {
		pool = c.entries
	}
	if best := bestMatch(e, pool); best != nil {
		return best.entity.Name
	}
	if len(candidates) > 0 {
		return candidates[0].entity.Name
	}
	return e.Name
}

func bestMatch(e model.Entity, pool []*canonicalEntity) *canonicalEntity {
	var best *canonicalEntity
	bestShape, bestName := 0.0, 0.0

	for _, ce := range pool {
		shape := ce.shapeScore(e)
		if shape < minShapeScore {
			continue
		}
		name := nameSimilarity(e.Name, ce.entity.Name)
		if best == nil || shape > bestShape || (shape == bestShape && name > bestName) {
			best, bestShape, bestName = ce, shape, name
		}
	}
	return best
}

// nameSimilarity 计算命名相似度
func nameSimilarity(name1, name2 string) float64 {
	n1 := strings.ToLower(name1)
	n2 := strings.ToLower(name2)

	// 完全匹配
	if n1 == n2 {
		return 1.0
	}

	// 包含关系
	if n1 != "" && n2 != "" && (strings.Contains(n1, n2) || strings.Contains(n2, n1)) {
		return 0.8
	}

	// Levenshtein 距离
	maxLen := math.Max(float64(len([]rune(n1))), float64(len([]rune(n2))))
	if maxLen == 0 {
		return 0
	}

	distance := levenshtein.DistanceForStrings([]rune(n1), []rune(n2), levenshtein.DefaultOptions)
	similarity := 1.0 - float64(distance)/maxLen

	if similarity > 0.7 {
		return similarity
	}

	return 0
}
