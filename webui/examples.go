package webui

// ExampleCars 是批量排序编辑器的默认内容。
const ExampleCars = `[
  {
    "name": "Tesla Model 3",
    "price": 45000,
    "range": 500,
    "efficiency": 150,
    "acceleration": 6.1,
    "fast_charge": 170,
    "seat_count": 5
  },
  {
    "name": "Volkswagen ID.4",
    "price": 40000,
    "range": 420,
    "efficiency": 180,
    "acceleration": 8.5,
    "fast_charge": 125,
    "seat_count": 5
  },
  {
    "name": "Hyundai Ioniq 5",
    "price": 48000,
    "range": 480,
    "efficiency": 165,
    "acceleration": 7.4,
    "fast_charge": 220,
    "seat_count": 5
  }
]`

// formDefaults 是单车表单的默认值。
type formDefaults struct {
	UserID       string
	Price        float64
	Range        float64
	Efficiency   float64
	Acceleration float64
	FastCharge   float64
	SeatCount    int
}

var defaultForm = formDefaults{
	UserID:       "benjo",
	Price:        45000,
	Range:        500,
	Efficiency:   150,
	Acceleration: 6.1,
	FastCharge:   170,
	SeatCount:    5,
}
