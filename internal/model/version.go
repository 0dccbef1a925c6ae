package model

// Имена счётчиков версий.
const (
	VersionShiftTemplates    = "shift_templates"
	VersionCapacityOverrides = "capacity_overrides"
)

// store_versions — монотонные счётчики изменений хранилищ.
// Увеличиваются в той же транзакции, что и сама мутация.
type StoreVersion struct {
	Name    string `gorm:"type:varchar(64);primaryKey"`
	Version int64  `gorm:"not null"`
}
