package model

type User struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Address  string `json:"address"`
	Company  string `json:"company"`
}
