package entity

type TrainStatus struct {
	TrainName       string `json:"train_name"`
	PNR             string `json:"pnr"`
	DOJ             string `json:"doj"`
	BookingStatus   string `json:"booking_status"`
	CurrentStatus   string `json:"current_status"`
	Coach           string `json:"coach"`
	Berth           string `json:"berth"`
	DelayMinutes    int    `json:"delay_minutes"`
	CurrentLocation string `json:"current_location"`
	Destination     string `json:"destination"`
}
