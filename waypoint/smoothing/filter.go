package smoothing

// MovingAverageFilter 对序列做居中窗口滑动平均
// 功能：抑制曲率/速度序列中的采样噪声，窗口在序列两端自动截短
// 参数：input-输入序列，windowSize-窗口宽度（<=1时原样返回副本）
// 返回：与输入等长的新序列，不修改输入
func MovingAverageFilter(input []float64, windowSize int) []float64 {
	output := make([]float64, len(input))
	if windowSize <= 1 {
		copy(output, input)
		return output
	}
	half := windowSize / 2
	for i := range input {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > len(input)-1 {
			hi = len(input) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += input[j]
		}
		output[i] = sum / float64(hi-lo+1)
	}
	return output
}
