package domain

// Category 用水器具类别（固定枚举，静态参考数据）
type Category string

const (
	CategorySink       Category = "sink"
	CategoryShower     Category = "shower"
	CategoryToilet     Category = "toilet"
	CategoryDishwasher Category = "dishwasher"
	CategoryWasher     Category = "washer"
	CategoryIrrigation Category = "irrigation"
	CategoryPool       Category = "pool"
	CategoryLeak       Category = "leak"
	CategoryOther      Category = "other"
	CategoryUnknown    Category = "unknown"
	CategoryRest       Category = "rest"
)

// AllCategories 按展示顺序排列的全部类别
var AllCategories = []Category{
	CategorySink,
	CategoryShower,
	CategoryToilet,
	CategoryDishwasher,
	CategoryWasher,
	CategoryIrrigation,
	CategoryPool,
	CategoryLeak,
	CategoryOther,
	CategoryUnknown,
	CategoryRest,
}

// Valid 校验类别取值
func (c Category) Valid() bool {
	for _, k := range AllCategories {
		if c == k {
			return true
		}
	}
	return false
}

// CategoryMeta 类别展示元数据（图标、颜色，前端渲染用）
type CategoryMeta struct {
	Category Category `json:"category"`
	Icon     string   `json:"icon"`
	Color    string   `json:"color"`
}

// categoryMeta 静态参考数据，与前端图例保持一致
var categoryMeta = map[Category]CategoryMeta{
	CategorySink:       {CategorySink, "faucet", "#4FC3F7"},
	CategoryShower:     {CategoryShower, "shower", "#0288D1"},
	CategoryToilet:     {CategoryToilet, "toilet", "#90A4AE"},
	CategoryDishwasher: {CategoryDishwasher, "dishwasher", "#7E57C2"},
	CategoryWasher:     {CategoryWasher, "washing-machine", "#5C6BC0"},
	CategoryIrrigation: {CategoryIrrigation, "sprinkler", "#66BB6A"},
	CategoryPool:       {CategoryPool, "pool", "#26C6DA"},
	CategoryLeak:       {CategoryLeak, "alert-triangle", "#EF5350"},
	CategoryOther:      {CategoryOther, "droplet", "#BDBDBD"},
	CategoryUnknown:    {CategoryUnknown, "help-circle", "#9E9E9E"},
	CategoryRest:       {CategoryRest, "minus", "#E0E0E0"},
}

// Meta 返回类别展示元数据
func (c Category) Meta() CategoryMeta {
	if m, ok := categoryMeta[c]; ok {
		return m
	}
	return CategoryMeta{Category: c, Icon: "droplet", Color: "#BDBDBD"}
}
